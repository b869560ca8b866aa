//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/librarium/lending/internal/application/book"
	appborrowing "github.com/librarium/lending/internal/application/borrowing"
	appuser "github.com/librarium/lending/internal/application/user"
	"github.com/librarium/lending/internal/domain/user"
	"github.com/librarium/lending/internal/infrastructure/config"
	"github.com/librarium/lending/internal/infrastructure/persistence/mysql"
	"github.com/librarium/lending/internal/interface/http/handler"
	"github.com/librarium/lending/internal/interface/http/middleware"
	"github.com/librarium/lending/internal/interface/http/router"
	"github.com/librarium/lending/pkg/event"
)

// infrastructureSet 基础设施：数据库、缓存存储、事件总线
var infrastructureSet = wire.NewSet(
	provideDB,
	provideStores,
	provideListCache,
	provideTokenBlacklist,
	provideRevocationChecker,
	provideEventBus,
	wire.Bind(new(event.Publisher), new(*event.Dispatcher)),
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewBorrowingRepository,
	mysql.NewTxManager,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	provideCatalogCache,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appborrowing.NewBorrowBookUseCase,
	appborrowing.NewReturnBookUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appuser.NewUpdateProfileUseCase,
)

// interfaceSet HTTP接口层
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewBorrowingHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideEngine,
	provideServer,
)

// InitializeApp 初始化整个应用
// cleanup按构造的逆序释放资源：事件总线排空 → 缓存连接 → 数据库
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
