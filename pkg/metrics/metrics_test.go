package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLending(t *testing.T) {
	before := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("borrow", "success"))

	ObserveLending("borrow", "success", time.Now().Add(-10*time.Millisecond))
	ObserveLending("borrow", "success", time.Now())

	after := testutil.ToFloat64(LendingOperationsTotal.WithLabelValues("borrow", "success"))
	assert.Equal(t, before+2, after)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/books/:id", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.GET("/metrics", gin.WrapH(Handler()))

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/books/:id", "201")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books/"+id, nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	// 三个不同的ID共享同一个路由模板标签
	assert.Equal(t, before+3, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(HTTPRequestsInProgress))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "library_http_requests_total"))
}
