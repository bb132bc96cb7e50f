//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 修改本文件后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewUserRepository）
// - Injector: 声明最终要构造的目标类型（*App）
// - wire.Bind: 把具体类型绑定到接口（*redis.SessionStore → appuser.SessionStore）

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookstore-commerce/internal/application/book"
	appcart "github.com/xiebiao/bookstore-commerce/internal/application/cart"
	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	appuser "github.com/xiebiao/bookstore-commerce/internal/application/user"
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
// 包含：数据库、Redis、事件发布、JWT
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideEventPublisher,
	provideJWTManager,
	provideOrderCache,
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewInventoryRepository,
	mysql.NewInventoryLogRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewInvoiceRepository,
	mysql.NewTxManager,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	appuser.NewProfileUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewListBooksUseCase,
	appinventory.NewLedger,
	provideInventoryService,
	appcart.NewService,
	apporder.NewPlaceOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewManageOrderUseCase,
	apporder.NewQueryOrderUseCase,
	provideInvoiceService,
)

// interfaceSet HTTP接口层
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewInventoryHandler,
	handler.NewInvoiceHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
	provideHTTPServer,
	wire.Struct(new(App), "*"),
)

// InitializeApp 初始化整个应用
//
// 教学说明：
// 1. cfg和log由main创建后传入，Wire把它们当作已有的Provider
// 2. 返回的cleanup按创建的逆序关闭资源(事件发布 → Redis → 数据库)
func InitializeApp(cfg *config.Config, log *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
