package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细)
	// 教学要点:订单和明细必须在同一事务中创建
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// LockByID 加行锁查询订单(事务内使用)
	LockByID(ctx context.Context, id uint) (*Order, error)

	// Update 更新订单头(状态、支付方式、地址等),明细不可修改
	Update(ctx context.Context, order *Order) error

	// Delete 删除订单及明细
	Delete(ctx context.Context, id uint) error

	// ListByUserID 查询用户的订单列表
	// 教学要点:支持分页,避免一次性查询大量数据
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
