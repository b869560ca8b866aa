// @title           Library Lending API
// @version         1.0
// @description     图书借阅后端：目录管理、借还书、账号
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "github.com/librarium/lending/docs"
	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/logger"
	"github.com/librarium/lending/pkg/tracing"
)

func main() {
	// 步骤1：加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 步骤2：日志
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	// 步骤3：链路追踪（未启用时为空操作）
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		zl.Fatal("init tracer failed", zap.Error(err))
	}

	// 步骤4：依赖注入
	app, cleanup, err := InitializeApp(cfg, zl)
	if err != nil {
		zl.Fatal("initialize app failed", zap.Error(err))
	}

	// 步骤5：启动HTTP服务
	go func() {
		zl.Info("http server started",
			zap.String("addr", app.Server.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("database", cfg.Database.Driver),
			zap.String("cache", cfg.Cache.Driver),
			zap.Bool("mq", cfg.MQ.Enabled),
		)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 步骤6：优雅关闭
	// 先停止接收请求，再排空事件队列、关闭连接
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(ctx); err != nil {
		zl.Error("http server shutdown", zap.Error(err))
	}
	cleanup()
	if err := shutdownTracer(context.Background()); err != nil {
		zl.Warn("tracer shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
