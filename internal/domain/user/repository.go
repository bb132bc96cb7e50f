package user

import (
	"context"
)

// Repository 用户仓储接口
// 设计说明:定义在domain层,由infrastructure层实现(依赖倒置原则)
type Repository interface {
	// Create 创建用户,邮箱重复返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新用户信息,邮箱重复返回ErrEmailDuplicate
	Update(ctx context.Context, user *User) error

	// Delete 删除用户(软删除)
	Delete(ctx context.Context, id uint) error
}
