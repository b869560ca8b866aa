package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appbook "github.com/librarium/lending/internal/application/book"
	appuser "github.com/librarium/lending/internal/application/user"
	"github.com/librarium/lending/internal/domain/book"
	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/notify"
	"github.com/librarium/lending/internal/infrastructure/persistence/memory"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
	"github.com/librarium/lending/internal/infrastructure/persistence/redis"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/internal/interface/http/router"
	"github.com/librarium/lending/pkg/event"
	"github.com/librarium/lending/pkg/jwt"
	"github.com/librarium/lending/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Server *http.Server
}

func newApp(server *http.Server) *App {
	return &App{Server: server}
}

// provideDB 数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenExpire)
}

// stores 列表缓存与token黑名单，按cache.driver选择Redis或进程内实现
type stores struct {
	listCache book.ListCache
	blacklist appuser.TokenBlacklist
}

// provideStores 创建缓存存储
// cache.driver=memory时不需要Redis，适合单实例部署与本地开发
func provideStores(cfg *config.Config, logger *zap.Logger) (*stores, func(), error) {
	switch cfg.Cache.Driver {
	case "memory":
		listCache := memory.NewListCache(cfg.Cache.ListTTL)
		blacklist := memory.NewTokenBlacklist()
		logger.Info("using in-process cache")
		return &stores{listCache: listCache, blacklist: blacklist}, func() {
			listCache.Stop()
			blacklist.Stop()
		}, nil

	default:
		client, err := redis.NewClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return &stores{
				listCache: redis.NewListCache(client),
				blacklist: redis.NewTokenBlacklist(client),
			}, func() {
				_ = client.Close()
			}, nil
	}
}

func provideListCache(s *stores) book.ListCache { return s.listCache }

func provideTokenBlacklist(s *stores) appuser.TokenBlacklist { return s.blacklist }

func provideRevocationChecker(s *stores) middleware.RevocationChecker { return s.blacklist }

// provideCatalogCache 图书列表缓存协调器
func provideCatalogCache(cfg *config.Config, cache book.ListCache, logger *zap.Logger) *appbook.CatalogCache {
	return appbook.NewCatalogCache(cache, cfg.Cache.ListTTL, logger)
}

// provideEventBus 事件分发器与通知订阅者
// cleanup先等待队列排空，再关闭MQ连接
func provideEventBus(cfg *config.Config, logger *zap.Logger) (*event.Dispatcher, func(), error) {
	// 1. 分发器
	dispatcher := event.NewDispatcher(logger.Named("event"), event.Options{
		Workers:   cfg.Event.Workers,
		QueueSize: cfg.Event.QueueSize,
	})

	// 2. 日志通知（始终启用）
	notify.NewLogNotifier(logger).Register(dispatcher)

	// 3. 转发到RabbitMQ（可选）
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
		if err != nil {
			_ = dispatcher.Shutdown(context.Background())
			return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
		}
		publisher = p
		notify.NewMQForwarder(publisher, cfg.MQ.BreakerOpen, logger).Register(dispatcher)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := dispatcher.Shutdown(ctx); err != nil {
			logger.Warn("event dispatcher did not drain", zap.Error(err))
		}
		if publisher != nil {
			_ = publisher.Close()
		}
	}
	return dispatcher, cleanup, nil
}

// provideEngine 创建Gin引擎并注册路由
func provideEngine(cfg *config.Config, logger *zap.Logger, h router.Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	return router.New(cfg, logger, h, auth)
}

// provideServer HTTP服务器
func provideServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
