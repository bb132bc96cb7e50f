// Package event 领域事件
//
// 事件在事务提交之后发布,发布失败只记录日志,不影响已经完成的业务操作。
package event

import (
	"context"
	"time"
)

// 路由键
const (
	OrderCreated      = "order.created"
	OrderCancelled    = "order.cancelled"
	InvoiceIssued     = "invoice.issued"
	InvoiceVoided     = "invoice.voided"
	InventoryLowStock = "inventory.low_stock"
)

// Event 事件信封
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New 创建事件
func New(eventType string, payload interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now(), Payload: payload}
}

// Publisher 事件发布端口,由infrastructure/messaging实现
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// OrderCreatedPayload order.created
type OrderCreatedPayload struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	UserID    uint   `json:"user_id"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

// OrderCancelledPayload order.cancelled
type OrderCancelledPayload struct {
	OrderID   uint `json:"order_id"`
	Restocked bool `json:"restocked"`
}

// InvoicePayload invoice.issued / invoice.voided
type InvoicePayload struct {
	InvoiceID uint   `json:"invoice_id"`
	OrderID   uint   `json:"order_id"`
	Total     string `json:"total"`
}

// LowStockPayload inventory.low_stock
type LowStockPayload struct {
	BookID    uint   `json:"book_id"`
	Available int    `json:"available"`
	Threshold int    `json:"threshold"`
	State     string `json:"state"`
}

// NopPublisher 不发布任何事件(未启用消息队列时使用)
type NopPublisher struct{}

// Publish 实现Publisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }
