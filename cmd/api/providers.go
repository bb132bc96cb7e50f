package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	appinvoice "github.com/xiebiao/bookstore-commerce/internal/application/invoice"
	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	appuser "github.com/xiebiao/bookstore-commerce/internal/application/user"
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/invoice"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/router"
	"github.com/xiebiao/bookstore-commerce/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-commerce/pkg/jwt"
	"github.com/xiebiao/bookstore-commerce/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Server *http.Server
}

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 构造函数的参数不是现成类型(需要从Config里取字段)，或者需要返回cleanup时，
// 在这里写一个provideXxx包装

// provideDB 创建数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis 创建Redis连接
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

// provideEventPublisher 创建领域事件发布器
//
// 教学要点：
// 1. 未启用RabbitMQ时使用NopPublisher
// 2. RabbitMQ连不上时同样降级为NopPublisher，事件丢失只记录告警，不阻止服务启动
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (event.Publisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		log.Info("未启用RabbitMQ,领域事件不会发布")
		return event.NopPublisher{}, func() {}, nil
	}

	sender, err := mq.NewPublisher(mq.Config{
		URL:          cfg.RabbitMQ.URL,
		Exchange:     cfg.RabbitMQ.Exchange,
		ExchangeType: cfg.RabbitMQ.ExchangeType,
	}, log)
	if err != nil {
		log.Warn("连接RabbitMQ失败,领域事件不会发布", zap.Error(err))
		return event.NopPublisher{}, func() {}, nil
	}

	breaker := circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.DefaultConfig())
	publisher := messaging.NewEventPublisher(sender, breaker, log)
	return publisher, func() { sender.Close() }, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideOrderCache 订单读缓存(Redis)
func provideOrderCache(client *goredis.Client, cfg *config.Config) apporder.Cache {
	return redis.NewOrderCache(client, cfg.Cache.OrderTTL)
}

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(userService user.Service, jwtManager *jwt.Manager, sessions appuser.SessionStore, cfg *config.Config, log *zap.Logger) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, log)
}

// provideLogoutUseCase 黑名单有效期与Access Token一致
func provideLogoutUseCase(sessions appuser.SessionStore, cfg *config.Config) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessions, cfg.JWT.AccessTokenExpire)
}

func provideInventoryService(
	ledger *appinventory.Ledger,
	invRepo inventory.Repository,
	logRepo inventory.LogRepository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
	cfg *config.Config,
	log *zap.Logger,
) *appinventory.Service {
	return appinventory.NewService(ledger, invRepo, logRepo, bookRepo, txManager, cfg.Inventory.DefaultThreshold, log)
}

func provideInvoiceService(
	invoiceRepo invoice.Repository,
	orderRepo order.Repository,
	txManager *mysql.TxManager,
	orderCache apporder.Cache,
	publisher event.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *appinvoice.Service {
	return appinvoice.NewService(invoiceRepo, orderRepo, txManager, orderCache, publisher, appinvoice.Config{
		DefaultCurrency:   cfg.Billing.DefaultCurrency,
		AllowedCurrencies: cfg.Billing.AllowedCurrencies,
	}, log)
}

// provideRouter 创建Gin引擎并注册路由
// release模式下不暴露Swagger
func provideRouter(h router.Handlers, auth *middleware.AuthMiddleware, cfg *config.Config, log *zap.Logger) *gin.Engine {
	return router.New(h, auth, log, router.Options{
		Mode:           cfg.Server.Mode,
		ServiceName:    cfg.Tracing.ServiceName,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		AllowOrigins:   cfg.CORS.AllowOrigins,
		EnableSwagger:  cfg.Server.Mode != gin.ReleaseMode,
	})
}

func provideHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
