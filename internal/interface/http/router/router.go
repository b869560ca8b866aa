// Package router 组装gin引擎：全局中间件、业务路由、运维端点
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/interface/http/dto"
	"github.com/librarium/lending/internal/interface/http/handler"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/pkg/metrics"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User      *handler.UserHandler
	Book      *handler.BookHandler
	Borrowing *handler.BorrowingHandler
}

// New 创建并配置Gin引擎
// 中间件顺序：Recovery → Logger → Metrics → 路由级认证
func New(cfg *config.Config, logger *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	// 1. 运行模式
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	dto.RegisterValidator()

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GinMiddleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// 2. 运维端点
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "healthy"})
	})

	// Swagger文档，生产环境不暴露
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 3. 业务路由
	registerRoutes(r.Group("/api"), h, auth)
	return r
}

func registerRoutes(api *gin.RouterGroup, h Handlers, auth *middleware.AuthMiddleware) {
	// 账号（公开）
	api.GET("/login", h.User.LoginRequired)
	api.POST("/login", h.User.Login)
	api.POST("/register", h.User.Register)

	// 个人中心
	user := api.Group("/user", auth.RequireAuth())
	{
		user.GET("/show", h.User.Show)
		user.PUT("/update", h.User.Update)
		user.POST("/logout", h.User.Logout)
	}

	// 图书：查询公开，写操作仅管理员
	books := api.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/:id", h.Book.GetBook)

		admin := books.Group("", auth.RequireAuth(), auth.RequireAdmin())
		admin.POST("", h.Book.CreateBook)
		admin.PUT("/:id", h.Book.UpdateBook)
		admin.DELETE("/:id", h.Book.DeleteBook)
	}

	// 借阅
	lending := api.Group("", auth.RequireAuth())
	{
		lending.POST("/borrowings", h.Borrowing.Borrow)
		lending.POST("/borrowings/:id/return", h.Borrowing.Return)
		lending.POST("/borrowing-return/:id", h.Borrowing.Return)
	}
}
