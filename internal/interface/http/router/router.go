// Package router 注册HTTP路由和全局中间件
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-commerce/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User      *handler.UserHandler
	Book      *handler.BookHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Inventory *handler.InventoryHandler
	Invoice   *handler.InvoiceHandler
}

// Options 路由选项
type Options struct {
	Mode           string // debug | release | test
	ServiceName    string
	MetricsEnabled bool
	MetricsPath    string
	AllowOrigins   []string
	EnableSwagger  bool
}

// New 创建Gin引擎并注册路由
//
// 中间件顺序：
// 1. Recovery 兜底panic
// 2. Logger 生成X-Request-ID并记录访问日志
// 3. Tracing 开启Server Span,后面的日志和指标都能拿到trace_id
// 4. Metrics 按路由模板统计请求数和耗时
// 5. CORS 预检请求在这里直接返回
func New(h Handlers, auth *middleware.AuthMiddleware, log *zap.Logger, opts Options) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.Logger(log),
		middleware.Tracing(opts.ServiceName),
		middleware.Metrics(),
		middleware.CORS(opts.AllowOrigins),
	)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	login := auth.RequireAuth()
	admin := []gin.HandlerFunc{login, auth.RequireAdmin()}

	// 用户模块
	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/logout", login, h.User.Logout)
		users.GET("/me", login, h.User.Me)
		users.PUT("/me", login, h.User.UpdateProfile)
	}

	// 图书模块(查询公开,维护需要管理员)
	books := v1.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/:id", h.Book.GetBook)
		books.POST("", append(admin, h.Book.PublishBook)...)
		books.PUT("/:id", append(admin, h.Book.UpdateBook)...)
	}

	// 购物车(需要登录)
	cart := v1.Group("/cart", login)
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.DELETE("/items/:book_id", h.Cart.RemoveItem)
		cart.POST("/abandon", h.Cart.Abandon)
	}

	// 订单(需要登录,后台维护需要管理员)
	orders := v1.Group("/orders", login)
	{
		orders.POST("/from-cart", h.Order.PlaceFromCart)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GetByOrder)
		orders.POST("/:id/cancel", h.Order.CancelOrder)

		orders.POST("/:id/cancel-and-restock", auth.RequireAdmin(), h.Order.CancelAndRestock)
		orders.PATCH("/:id", auth.RequireAdmin(), h.Order.UpdateOrder)
		orders.DELETE("/:id", auth.RequireAdmin(), h.Order.DeleteOrder)
	}

	// 库存台账
	inventory := v1.Group("/inventory", login)
	{
		inventory.GET("/:book_id", h.Inventory.Get)

		managed := inventory.Group("", auth.RequireAdmin())
		managed.POST("", h.Inventory.Create)
		managed.GET("/low-stock", h.Inventory.LowStock)
		managed.GET("/:book_id/logs", h.Inventory.Logs)
		managed.PATCH("/:book_id", h.Inventory.UpdateSettings)
		managed.DELETE("/:book_id", h.Inventory.Delete)
		managed.POST("/:book_id/reserve", h.Inventory.Reserve)
		managed.POST("/:book_id/release", h.Inventory.Release)
		managed.POST("/:book_id/confirm", h.Inventory.ConfirmSale)
		managed.POST("/:book_id/restock", h.Inventory.Restock)
	}

	// 发票
	invoices := v1.Group("/invoices", login)
	{
		invoices.POST("", h.Invoice.Issue)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PATCH("/:id", h.Invoice.Update)
		invoices.POST("/:id/pay", auth.RequireAdmin(), h.Invoice.Pay)
		invoices.DELETE("/:id", auth.RequireAdmin(), h.Invoice.Void)
	}

	return r
}
