// Package consumer 领域事件消费者
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/mq"
)

// lowStockMessage inventory.low_stock消息体
type lowStockMessage struct {
	Type       string                `json:"type"`
	OccurredAt time.Time             `json:"occurred_at"`
	Payload    event.LowStockPayload `json:"payload"`
}

// Notifier 告警通知渠道(邮件、IM机器人等)
type Notifier interface {
	Notify(ctx context.Context, alert event.LowStockPayload) error
}

// LogNotifier 只写日志的通知渠道
type LogNotifier struct {
	Log *zap.Logger
}

// Notify 实现Notifier
func (n LogNotifier) Notify(_ context.Context, alert event.LowStockPayload) error {
	n.Log.Warn("库存告警",
		zap.Uint("book_id", alert.BookID),
		zap.Int("available", alert.Available),
		zap.Int("threshold", alert.Threshold),
		zap.String("state", alert.State))
	return nil
}

// StockAlertHandler 处理inventory.#消息
//
// 教学要点：
// 1. 消息格式错误返回mq.Permanent，消息被丢弃而不是无限重新入队
// 2. 通知失败返回普通错误，消息重新入队等待重试
// 3. 其他inventory.*事件直接确认
type StockAlertHandler struct {
	queue    string
	notifier Notifier
	log      *zap.Logger
}

// NewStockAlertHandler 创建库存告警处理器
func NewStockAlertHandler(queue string, notifier Notifier, log *zap.Logger) *StockAlertHandler {
	metrics.InitMetrics()
	return &StockAlertHandler{queue: queue, notifier: notifier, log: log}
}

// Handle 实现mq.Handler
func (h *StockAlertHandler) Handle(ctx context.Context, routingKey string, body []byte) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveSince(metrics.MessageProcessingDuration, start)
		metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": h.queue, "result": metrics.Result(err)})
	}()

	if routingKey != event.InventoryLowStock {
		h.log.Debug("忽略事件", zap.String("routing_key", routingKey))
		return nil
	}

	var msg lowStockMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return mq.Permanent(fmt.Errorf("解析库存告警失败: %w", err))
	}
	if msg.Payload.BookID == 0 {
		return mq.Permanent(fmt.Errorf("库存告警缺少book_id"))
	}

	if err := h.notifier.Notify(ctx, msg.Payload); err != nil {
		return fmt.Errorf("发送库存告警失败: %w", err)
	}
	return nil
}
