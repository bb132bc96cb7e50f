// Package metrics 提供基于Prometheus的指标收集
//
// # 核心概念
//
// **1. Counter（计数器）**：只增不减的累计值
//   - 示例：HTTP请求总数、订单总数、库存操作次数
//
// **2. Gauge（仪表盘）**：可增可减的瞬时值
//   - 示例：正在处理的请求数、熔断器状态
//
// **3. Histogram（直方图）**：观测值的分布
//   - 示例：HTTP请求耗时、下单耗时
//   - 特点：Prometheus端可计算分位数（P50、P90、P99）
//
// # 使用示例
//
//	// 1. 启动时初始化（重复调用是安全的）
//	metrics.InitMetrics()
//
//	// 2. 暴露/metrics端点
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 在业务代码中记录指标
//	start := time.Now()
//	metrics.IncGauge(metrics.OrdersInProgress)
//	defer metrics.DecGauge(metrics.OrdersInProgress)
//
//	if err := placeOrder(ctx); err != nil {
//	    metrics.IncCounterVec(metrics.OrdersFailedTotal, map[string]string{"source": "cart"})
//	    return err
//	}
//	metrics.IncCounterVec(metrics.OrdersCreatedTotal, map[string]string{"source": "cart"})
//	metrics.ObserveSince(metrics.OrderCreationDuration, start)
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// ========== HTTP指标 ==========

	// HTTPRequestsTotal HTTP请求总数(method/path/status)
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration HTTP请求耗时(method/path)
	HTTPRequestDuration *prometheus.HistogramVec
	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// ========== 订单指标 ==========

	// OrdersCreatedTotal 订单创建总数(source=cart/direct)
	OrdersCreatedTotal *prometheus.CounterVec
	// OrdersFailedTotal 订单创建失败总数(source=cart/direct)
	OrdersFailedTotal *prometheus.CounterVec
	// OrderCreationDuration 下单耗时(整个事务)
	OrderCreationDuration prometheus.Histogram
	// OrdersInProgress 正在处理的下单请求数
	OrdersInProgress prometheus.Gauge
	// OrdersCancelledTotal 订单取消总数(restock=true/false)
	OrdersCancelledTotal *prometheus.CounterVec

	// ========== 库存与发票指标 ==========

	// InventoryOperationsTotal 库存操作总数(operation/result)
	InventoryOperationsTotal *prometheus.CounterVec
	// LowStockAlertsTotal 低库存告警次数
	LowStockAlertsTotal prometheus.Counter
	// InvoicesIssuedTotal 发票开具总数(currency)
	InvoicesIssuedTotal *prometheus.CounterVec

	// ========== 熔断器指标 ==========

	// CircuitBreakerState 熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)
	CircuitBreakerState *prometheus.GaugeVec
	// CircuitBreakerRequests 熔断器请求总数(name/result)
	CircuitBreakerRequests *prometheus.CounterVec

	// ========== 消息与缓存指标 ==========

	// MessagesPublishedTotal 事件发布总数(routing_key/result)
	MessagesPublishedTotal *prometheus.CounterVec
	// MessagesConsumedTotal 消息消费总数(queue/result)
	MessagesConsumedTotal *prometheus.CounterVec
	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram
	// CacheRequestsTotal 缓存访问次数(cache/result=hit/miss/error)
	CacheRequestsTotal *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry
// promauto重复注册同名指标会panic，所以只执行一次
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 3, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "订单创建总数",
		},
		[]string{"source"},
	)

	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "订单创建失败总数",
		},
		[]string{"source"},
	)

	OrderCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_creation_duration_seconds",
			Help:    "订单创建耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	OrdersInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_in_progress",
			Help: "正在处理的订单数",
		},
	)

	OrdersCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "订单取消总数",
		},
		[]string{"restock"},
	)

	InventoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "库存操作总数",
		},
		[]string{"operation", "result"},
	)

	LowStockAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_low_stock_alerts_total",
			Help: "低库存告警次数",
		},
	)

	InvoicesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoices_issued_total",
			Help: "发票开具总数",
		},
		[]string{"currency"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"}, // result: success/failure/rejected
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "事件发布总数",
		},
		[]string{"routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "缓存访问次数",
		},
		[]string{"cache", "result"},
	)
}

// ========== 辅助函数 ==========

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置带标签的Gauge值
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录带标签的观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ObserveSince 记录从start到现在的耗时(秒)
func ObserveSince(histogram prometheus.Histogram, start time.Time) {
	histogram.Observe(time.Since(start).Seconds())
}

// Result 把error转换成result标签值
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
