package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/librarium/lending/pkg/errors"
	"github.com/librarium/lending/pkg/response"
)

// Recovery 捕获handler中的panic，返回统一的500响应
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.String("request_id", GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		response.Fail(c, http.StatusInternalServerError, apperrors.ErrInternal.Message)
		c.Abort()
	})
}
