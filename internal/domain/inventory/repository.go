package inventory

import "context"

// Repository 库存台账仓储接口
// 教学要点:
// 1. LockByBookID必须在事务内调用(SELECT ... FOR UPDATE)
// 2. 读-判断-写 三步都在同一把行锁下完成,才能防止并发超卖
type Repository interface {
	// Create 建档,同一本书重复建档返回ErrInventoryExists
	Create(ctx context.Context, inv *Inventory) error

	// FindByBookID 普通查询(不加锁)
	FindByBookID(ctx context.Context, bookID uint) (*Inventory, error)

	// LockByBookID 加行锁查询
	LockByBookID(ctx context.Context, bookID uint) (*Inventory, error)

	// Save 保存计数、状态与设置
	Save(ctx context.Context, inv *Inventory) error

	// Delete 删除台账
	Delete(ctx context.Context, bookID uint) error

	// ListLowStock 查询低库存与缺货记录
	ListLowStock(ctx context.Context) ([]*Inventory, error)
}

// LogRepository 库存变更日志仓储
type LogRepository interface {
	// Append 追加日志
	Append(ctx context.Context, log *ChangeLog) error

	// ListByBookID 按时间倒序查询某本书的变更日志
	ListByBookID(ctx context.Context, bookID uint, limit int) ([]*ChangeLog, error)
}
