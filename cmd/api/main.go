// @title           Bookstore Commerce API
// @version         1.0
// @description     图书商城订单履约:购物车、下单、库存台账、发票
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer {access_token}
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookstore-commerce/docs"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-commerce/pkg/logger"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

// main 主程序入口
//
// 启动顺序：
// 1. .env → 配置 → 日志
// 2. 链路追踪和指标
// 3. Wire组装依赖(数据库、Redis、RabbitMQ、用例、路由)
// 4. 启动HTTP服务，收到SIGINT/SIGTERM后优雅关闭
func main() {
	// 1. 本地开发时从.env加载环境变量(文件不存在时忽略)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("加载.env失败: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	// 2. 可观测性
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			zlog.Fatal("初始化链路追踪失败", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zlog.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}
	metrics.InitMetrics()

	// 3. 依赖注入
	app, cleanup, err := InitializeApp(cfg, zlog)
	if err != nil {
		zlog.Fatal("初始化应用失败", zap.Error(err))
	}
	defer cleanup()

	// 4. 启动HTTP服务
	go func() {
		zlog.Info("服务启动成功",
			zap.String("addr", app.Server.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("database", cfg.Database.Driver),
			zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("启动服务失败", zap.Error(err))
		}
	}()

	// 5. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在优雅关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		zlog.Error("服务器强制关闭", zap.Error(err))
	}
	zlog.Info("服务已关闭")
}
