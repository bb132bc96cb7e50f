package invoice

import "context"

// Repository 发票仓储接口
type Repository interface {
	// Create 创建发票及明细
	// 同一订单已有发票时返回apperrors.ErrDuplicateEntry(order_id唯一索引)
	Create(ctx context.Context, inv *Invoice) error

	FindByID(ctx context.Context, id uint) (*Invoice, error)

	// FindByOrderID 查询订单的发票,不存在时返回ErrInvoiceNotFound
	FindByOrderID(ctx context.Context, orderID uint) (*Invoice, error)

	// UpdateStatus 保存状态及付款/作废时间
	UpdateStatus(ctx context.Context, inv *Invoice) error

	// UpdateDetails 保存账单地址和备注
	UpdateDetails(ctx context.Context, inv *Invoice) error

	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Invoice, int64, error)
}
