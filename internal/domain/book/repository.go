package book

import (
	"context"
)

// Repository 图书仓储接口
// 设计说明:
// 1. 定义在domain层,由infrastructure层实现(依赖倒置)
// 2. 所有方法都通过context参与调用方开启的事务
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子更新库存计数(delta可正可负,结果不允许为负)
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(搜索标题、出版社、ISBN)
	SortBy     string // 排序字段(price_asc, price_desc, created_at_desc)
	ActiveOnly bool   // 只查询在售图书
}
