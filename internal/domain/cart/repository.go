package cart

import "context"

// Repository 购物车仓储接口
type Repository interface {
	// Create 创建购物车(含明细)
	// 同一用户已存在ACTIVE购物车时返回apperrors.ErrDuplicateEntry
	Create(ctx context.Context, c *Cart) error

	// FindByID 根据ID查找购物车
	FindByID(ctx context.Context, id uint) (*Cart, error)

	// FindActiveByUserID 查询用户的ACTIVE购物车
	FindActiveByUserID(ctx context.Context, userID uint) (*Cart, error)

	// LockByID 加行锁查询(事务内使用)
	LockByID(ctx context.Context, id uint) (*Cart, error)

	// LockActiveByUserID 加行锁查询用户的ACTIVE购物车(事务内使用)
	LockActiveByUserID(ctx context.Context, userID uint) (*Cart, error)

	// Save 保存状态、汇总金额并整体替换明细
	Save(ctx context.Context, c *Cart) error
}
