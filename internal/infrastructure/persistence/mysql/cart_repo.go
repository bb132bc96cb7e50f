package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// cartRepository 购物车仓储实现
// 教学要点:
// 1. 购物车与明细是一个聚合,Save时整体替换明细
// 2. active_owner唯一索引保证每个用户最多一个ACTIVE购物车
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// Create 创建购物车(含明细)
func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	model := toCartModel(c)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry
		}
		return apperrors.Wrap(err, "创建购物车失败")
	}

	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	for i := range c.Items {
		c.Items[i].ID = model.Items[i].ID
		c.Items[i].CartID = model.ID
	}
	return nil
}

// FindByID 根据ID查找
func (r *cartRepository) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	return r.first(r.getDB(ctx).Where("id = ?", id))
}

// FindActiveByUserID 查询用户的ACTIVE购物车
func (r *cartRepository) FindActiveByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.first(r.getDB(ctx).Where("user_id = ? AND status = ?", userID, string(cart.StatusActive)))
}

// LockByID 加行锁查询
func (r *cartRepository) LockByID(ctx context.Context, id uint) (*cart.Cart, error) {
	return r.first(r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// LockActiveByUserID 加行锁查询用户的ACTIVE购物车
func (r *cartRepository) LockActiveByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	return r.first(r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, string(cart.StatusActive)))
}

// Save 保存购物车
// 1. 更新购物车头(状态、汇总金额、active_owner)
// 2. 删除旧明细
// 3. 插入新明细
// 调用方应在事务内执行,三步要么全部成功要么全部回滚
func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	db := r.getDB(ctx)
	model := toCartModel(c)

	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry
		}
		return apperrors.Wrap(err, "保存购物车失败")
	}

	if err := db.Where("cart_id = ?", c.ID).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清理购物车明细失败")
	}

	if len(model.Items) > 0 {
		for i := range model.Items {
			model.Items[i].ID = 0
			model.Items[i].CartID = c.ID
		}
		if err := db.Create(&model.Items).Error; err != nil {
			return apperrors.Wrap(err, "保存购物车明细失败")
		}
		for i := range c.Items {
			c.Items[i].ID = model.Items[i].ID
			c.Items[i].CartID = c.ID
		}
	}

	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *cartRepository) first(query *gorm.DB) (*cart.Cart, error) {
	var model CartModel
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toCartModel(c *cart.Cart) *CartModel {
	model := &CartModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    string(c.Status),
		Subtotal:  c.Subtotal,
		Discount:  c.Discount,
		Tax:       c.Tax,
		Total:     c.Total,
		Items:     make([]CartItemModel, len(c.Items)),
		CreatedAt: c.CreatedAt,
	}
	if c.Status == cart.StatusActive {
		owner := c.UserID
		model.ActiveOwner = &owner
	}
	for i, it := range c.Items {
		model.Items[i] = CartItemModel{
			ID:        it.ID,
			CartID:    c.ID,
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return model
}

func toCartEntity(m *CartModel) *cart.Cart {
	c := &cart.Cart{
		ID:        m.ID,
		UserID:    m.UserID,
		Status:    cart.Status(m.Status),
		Items:     make([]cart.Item, len(m.Items)),
		Subtotal:  m.Subtotal,
		Discount:  m.Discount,
		Tax:       m.Tax,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for i, it := range m.Items {
		c.Items[i] = cart.Item{
			ID:        it.ID,
			CartID:    it.CartID,
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return c
}
