package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/librarium/lending/internal/application/book"
	appborrowing "github.com/librarium/lending/internal/application/borrowing"
	appuser "github.com/librarium/lending/internal/application/user"
	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/persistence/memory"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
	"github.com/librarium/lending/internal/interface/http/handler"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/pkg/event"
	"github.com/librarium/lending/pkg/jwt"
)

type envelope struct {
	Status  string          `json:"status"`
	Error   bool            `json:"error"`
	Message json.RawMessage `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) messages(t *testing.T) []string {
	t.Helper()
	var list []string
	require.NoError(t, json.Unmarshal(e.Message, &list))
	return list
}

func (e envelope) message(t *testing.T) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(e.Message, &s))
	return s
}

type testServer struct {
	engine *gin.Engine
	events *event.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := mysql.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop()
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}

	listCache := memory.NewListCache(time.Minute)
	blacklist := memory.NewTokenBlacklist()
	t.Cleanup(listCache.Stop)
	t.Cleanup(blacklist.Stop)

	bookRepo := mysql.NewBookRepository(db)
	borrowingRepo := mysql.NewBorrowingRepository(db)
	userRepo := mysql.NewUserRepository(db)
	txm := mysql.NewTxManager(db)
	userService := user.NewServiceWithCost(userRepo, bcrypt.MinCost)
	jwtManager := jwt.NewManager("test-secret", time.Hour)
	catalog := appbook.NewCatalogCache(listCache, time.Minute, logger)
	events := &event.Recorder{}

	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, jwtManager),
			appuser.NewLoginUseCase(userService, jwtManager),
			appuser.NewLogoutUseCase(jwtManager, blacklist),
			appuser.NewProfileUseCase(userRepo, borrowingRepo),
			appuser.NewUpdateProfileUseCase(userService),
		),
		Book: handler.NewBookHandler(
			appbook.NewListBooksUseCase(bookRepo, catalog),
			appbook.NewGetBookUseCase(bookRepo),
			appbook.NewCreateBookUseCase(bookRepo, catalog),
			appbook.NewUpdateBookUseCase(bookRepo, borrowingRepo, catalog),
			appbook.NewDeleteBookUseCase(bookRepo, catalog),
		),
		Borrowing: handler.NewBorrowingHandler(
			appborrowing.NewBorrowBookUseCase(bookRepo, borrowingRepo, userRepo, txm, events, logger),
			appborrowing.NewReturnBookUseCase(bookRepo, borrowingRepo, userRepo, txm, events, logger),
		),
	}
	auth := middleware.NewAuthMiddleware(jwtManager, blacklist, logger)

	return &testServer{engine: New(cfg, logger, h, auth), events: events}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env, w.Body.Bytes()
}

func (s *testServer) register(t *testing.T, name, role string) string {
	t.Helper()
	code, env, _ := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name":                  name,
		"email":                 strings.ToLower(name) + "@example.com",
		"password":              "secret1",
		"password_confirmation": "secret1",
		"role":                  role,
	})
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, env.Token)
	return env.Token
}

func (s *testServer) createBook(t *testing.T, adminToken, title string) uint {
	t.Helper()
	code, env, _ := s.do(t, http.MethodPost, "/api/books", adminToken, gin.H{
		"title": title, "author": "Someone", "isbn": "isbn-" + title, "published_at": "1965-08-01",
	})
	require.Equal(t, http.StatusCreated, code)
	var b appbook.BookResponse
	require.NoError(t, json.Unmarshal(env.Data, &b))
	return b.ID
}

func TestAccounts(t *testing.T) {
	s := newTestServer(t)

	t.Run("注册", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/register", "", gin.H{
			"name": "Alice", "email": "alice@example.com",
			"password": "secret1", "password_confirmation": "secret1",
		})
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "User registered successfully.", env.message(t))
		assert.NotEmpty(t, env.Token)

		var info appuser.UserInfo
		require.NoError(t, json.Unmarshal(env.Data, &info))
		assert.Equal(t, "user", info.Role)
	})

	t.Run("重复邮箱", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/register", "", gin.H{
			"name": "Alice", "email": "ALICE@example.com",
			"password": "secret1", "password_confirmation": "secret1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"The email has already been taken."}, env.messages(t))
	})

	t.Run("密码确认不一致", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/register", "", gin.H{
			"name": "Bob", "email": "bob@example.com",
			"password": "secret1", "password_confirmation": "secret2",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.True(t, env.Error)
		assert.Equal(t, []string{"The password field confirmation does not match."}, env.messages(t))
	})

	t.Run("登录", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/login", "", gin.H{
			"email": "alice@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Login successful.", env.message(t))
		assert.NotEmpty(t, env.Token)
	})

	t.Run("密码错误", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/login", "", gin.H{
			"email": "alice@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"The provided credentials are incorrect."}, env.messages(t))
	})

	t.Run("邮箱不存在", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/login", "", gin.H{
			"email": "nobody@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"We couldn't find your email address."}, env.messages(t))
	})

	t.Run("GET登录入口", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodGet, "/api/login", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, []string{"You are unauthenticated or you do not have enough rights for this operation."}, env.messages(t))
	})
}

func TestProfileAndLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Carol", "")

	code, env, _ := s.do(t, http.MethodGet, "/api/user/show", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User details retrieved successfully.", env.message(t))
	var profile appuser.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "Carol", profile.User.Name)
	assert.Empty(t, profile.BorrowedBooks)

	code, env, _ = s.do(t, http.MethodPut, "/api/user/update", token, gin.H{"name": "Caroline"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User updated successfully.", env.message(t))
	var info appuser.UserInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "Caroline", info.Name)
	assert.Equal(t, "carol@example.com", info.Email)

	code, env, _ = s.do(t, http.MethodPost, "/api/user/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out successfully.", env.message(t))

	// 登出后token失效
	code, env, _ = s.do(t, http.MethodGet, "/api/user/show", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, []string{"Unauthenticated."}, env.messages(t))
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t)
	userToken := s.register(t, "Dave", "user")

	code, env, _ := s.do(t, http.MethodPost, "/api/books", "", gin.H{"title": "Dune"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, []string{"Unauthenticated."}, env.messages(t))

	code, _, _ = s.do(t, http.MethodGet, "/api/user/show", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env, _ = s.do(t, http.MethodPost, "/api/books", userToken, gin.H{
		"title": "Dune", "author": "Herbert", "isbn": "1",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, []string{"You do not have permission to perform this action."}, env.messages(t))
}

func TestBookCatalog(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "Admin", "admin")

	id := s.createBook(t, admin, "Dune")
	s.createBook(t, admin, "Emma")

	t.Run("缺少必填字段", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/books", admin, gin.H{"title": "Solo"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"The author field is required.", "The isbn field is required."}, env.messages(t))
	})

	t.Run("ISBN重复", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPost, "/api/books", admin, gin.H{
			"title": "Dune 2", "author": "Herbert", "isbn": "isbn-Dune",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"The isbn has already been taken."}, env.messages(t))
	})

	t.Run("列表", func(t *testing.T) {
		code, _, body := s.do(t, http.MethodGet, "/api/books?sort_by=title&sort_order=asc", "", nil)
		require.Equal(t, http.StatusOK, code)

		var page struct {
			CurrentPage int                    `json:"current_page"`
			Data        []appbook.BookResponse `json:"data"`
			Total       int64                  `json:"total"`
			PerPage     int                    `json:"per_page"`
		}
		require.NoError(t, json.Unmarshal(body, &page))
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, book.PageSize, page.PerPage)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "Dune", page.Data[0].Title)
		require.NotNil(t, page.Data[0].PublishedAt)
		assert.Equal(t, "1965-08-01", *page.Data[0].PublishedAt)
	})

	t.Run("未知状态过滤返回空页", func(t *testing.T) {
		code, _, body := s.do(t, http.MethodGet, "/api/books?status=lost", "", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(body), `"total":0`)
	})

	t.Run("详情", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", id), "", nil)
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "Book found successfully", env.message(t))

		code, env, _ = s.do(t, http.MethodGet, "/api/books/9999", "", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, []string{"Book not found."}, env.messages(t))

		code, _, _ = s.do(t, http.MethodGet, "/api/books/abc", "", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("更新", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", id), admin, gin.H{"title": "Dune Messiah"})
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "Book updated successfully", env.message(t))
		var b appbook.BookResponse
		require.NoError(t, json.Unmarshal(env.Data, &b))
		assert.Equal(t, "Dune Messiah", b.Title)
		assert.Equal(t, "Someone", b.Author)
		require.NotNil(t, b.PublishedAt, "未出现的字段保持不变")
	})

	t.Run("显式null清空出版日期", func(t *testing.T) {
		code, env, _ := s.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", id), admin,
			gin.H{"published_at": nil, "description": nil})
		require.Equal(t, http.StatusCreated, code)
		var b appbook.BookResponse
		require.NoError(t, json.Unmarshal(env.Data, &b))
		assert.Nil(t, b.PublishedAt)
		assert.Empty(t, b.Description)
		assert.Equal(t, "Dune Messiah", b.Title)
	})
}

func TestLendingFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "Admin", "admin")
	reader := s.register(t, "Reader", "user")
	bookID := s.createBook(t, admin, "Dune")

	// 1. 借书
	code, env, _ := s.do(t, http.MethodPost, "/api/borrowings", reader, gin.H{"book_id": bookID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Book borrowed successfully", env.message(t))
	var record appborrowing.BorrowingResponse
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, bookID, record.BookID)
	assert.Nil(t, record.ReturnedAt)

	// 2. 重复借书
	code, env, _ = s.do(t, http.MethodPost, "/api/borrowings", reader, gin.H{"book_id": bookID})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"Book already borrowed."}, env.messages(t))

	// 3. 借出中的书不在默认列表，且不能删除
	_, _, body := s.do(t, http.MethodGet, "/api/books", "", nil)
	assert.Contains(t, string(body), `"total":0`)

	code, env, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/books/%d", bookID), admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"Can not delete a borrowed book."}, env.messages(t))

	// 借出期间管理员不能把状态改回available
	code, env, _ = s.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", bookID), admin, gin.H{"status": "available"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"Can not mark a book available while it is on loan."}, env.messages(t))

	// 4. 个人资料包含借阅记录
	_, env, _ = s.do(t, http.MethodGet, "/api/user/show", reader, nil)
	var profile appuser.ProfileResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	require.Len(t, profile.BorrowedBooks, 1)
	assert.Equal(t, "Dune", profile.BorrowedBooks[0].BookTitle)

	// 5. 别人不能归还
	other := s.register(t, "Other", "user")
	code, env, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/borrowings/%d/return", record.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, []string{"Borrowing not found."}, env.messages(t))

	// 6. 通过别名路由归还
	code, env, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/borrowing-return/%d", record.ID), reader, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Book returned successfully", env.message(t))

	code, env, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/borrowings/%d/return", record.ID), reader, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"Book already returned."}, env.messages(t))

	// 7. 归还后可删除
	code, env, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/books/%d", bookID), admin, nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Book deleted successfully", env.message(t))

	// 8. 删除后ISBN释放，同一本书可以重新录入
	code, _, _ = s.do(t, http.MethodPost, "/api/books", admin, gin.H{
		"title": "Dune", "author": "Someone", "isbn": "isbn-Dune",
	})
	assert.Equal(t, http.StatusCreated, code)

	// 历史借阅仍在个人资料中
	_, env, _ = s.do(t, http.MethodGet, "/api/user/show", reader, nil)
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	require.Len(t, profile.BorrowedBooks, 1)
	assert.Equal(t, bookID, profile.BorrowedBooks[0].BookID)

	assert.Len(t, s.events.Events(), 2)
}

func TestBorrow_Validation(t *testing.T) {
	s := newTestServer(t)
	reader := s.register(t, "Reader", "")

	code, env, _ := s.do(t, http.MethodPost, "/api/borrowings", reader, gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"The book id field is required."}, env.messages(t))

	code, env, _ = s.do(t, http.MethodPost, "/api/borrowings", reader, gin.H{"book_id": 424242})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"Book not found."}, env.messages(t))
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
