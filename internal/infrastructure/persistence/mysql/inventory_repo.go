package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// inventoryRepository 库存台账仓储实现
// 教学要点:
// 1. LockByBookID使用SELECT ... FOR UPDATE,必须在TxManager.Transaction内调用
// 2. 计数的判断和修改都在领域实体里完成,这里只负责持久化
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存台账仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

// Create 建档
// book_id唯一索引冲突 → ErrInventoryExists
func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	model := toInventoryModel(inv)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrInventoryExists
		}
		return apperrors.Wrap(err, "创建库存记录失败")
	}

	inv.ID = model.ID
	inv.CreatedAt = model.CreatedAt
	inv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByBookID 普通查询
func (r *inventoryRepository) FindByBookID(ctx context.Context, bookID uint) (*inventory.Inventory, error) {
	var model InventoryModel
	if err := r.getDB(ctx).Where("book_id = ?", bookID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}
	return toInventoryEntity(&model), nil
}

// LockByBookID 加行锁查询
func (r *inventoryRepository) LockByBookID(ctx context.Context, bookID uint) (*inventory.Inventory, error) {
	var model InventoryModel
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("book_id = ?", bookID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定库存失败")
	}
	return toInventoryEntity(&model), nil
}

// Save 保存台账
func (r *inventoryRepository) Save(ctx context.Context, inv *inventory.Inventory) error {
	model := toInventoryModel(inv)
	if err := r.getDB(ctx).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "保存库存失败")
	}
	inv.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除台账
func (r *inventoryRepository) Delete(ctx context.Context, bookID uint) error {
	result := r.getDB(ctx).Where("book_id = ?", bookID).Delete(&InventoryModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除库存记录失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInventoryNotFound
	}
	return nil
}

// ListLowStock 查询低库存与缺货记录(按可用数量升序)
func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]*inventory.Inventory, error) {
	var models []InventoryModel
	err := r.getDB(ctx).
		Where("state IN ?", []string{string(inventory.StateLowStock), string(inventory.StateOutOfStock)}).
		Order("available ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询低库存失败")
	}

	result := make([]*inventory.Inventory, len(models))
	for i := range models {
		result[i] = toInventoryEntity(&models[i])
	}
	return result, nil
}

func (r *inventoryRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toInventoryModel(inv *inventory.Inventory) *InventoryModel {
	return &InventoryModel{
		ID:              inv.ID,
		BookID:          inv.BookID,
		Available:       inv.Available,
		Reserved:        inv.Reserved,
		Threshold:       inv.Threshold,
		State:           string(inv.State),
		Location:        inv.Location,
		Notes:           inv.Notes,
		LastRestockLot:  inv.LastRestockLot,
		LastRestockedAt: inv.LastRestockedAt,
		CreatedAt:       inv.CreatedAt,
	}
}

func toInventoryEntity(m *InventoryModel) *inventory.Inventory {
	return &inventory.Inventory{
		ID:              m.ID,
		BookID:          m.BookID,
		Available:       m.Available,
		Reserved:        m.Reserved,
		Threshold:       m.Threshold,
		State:           inventory.State(m.State),
		Location:        m.Location,
		Notes:           m.Notes,
		LastRestockLot:  m.LastRestockLot,
		LastRestockedAt: m.LastRestockedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// inventoryLogRepository 库存变更日志(只追加)
type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存日志仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

// Append 追加日志,和台账变更在同一事务内
func (r *inventoryLogRepository) Append(ctx context.Context, l *inventory.ChangeLog) error {
	model := &InventoryLogModel{
		BookID:          l.BookID,
		ChangeType:      string(l.ChangeType),
		Quantity:        l.Quantity,
		BeforeAvailable: l.BeforeAvailable,
		AfterAvailable:  l.AfterAvailable,
		BeforeReserved:  l.BeforeReserved,
		AfterReserved:   l.AfterReserved,
		Lot:             l.Lot,
		Remark:          l.Remark,
		CreatedAt:       l.CreatedAt,
	}
	if l.OrderID != 0 {
		orderID := l.OrderID
		model.OrderID = &orderID
	}

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存日志失败")
	}
	l.ID = model.ID
	return nil
}

// ListByBookID 按时间倒序查询
func (r *inventoryLogRepository) ListByBookID(ctx context.Context, bookID uint, limit int) ([]*inventory.ChangeLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []InventoryLogModel
	err := dbFromContext(ctx, r.db).
		Where("book_id = ?", bookID).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询库存日志失败")
	}

	logs := make([]*inventory.ChangeLog, len(models))
	for i, m := range models {
		logs[i] = &inventory.ChangeLog{
			ID:              m.ID,
			BookID:          m.BookID,
			ChangeType:      inventory.ChangeType(m.ChangeType),
			Quantity:        m.Quantity,
			BeforeAvailable: m.BeforeAvailable,
			AfterAvailable:  m.AfterAvailable,
			BeforeReserved:  m.BeforeReserved,
			AfterReserved:   m.AfterReserved,
			Lot:             m.Lot,
			Remark:          m.Remark,
			CreatedAt:       m.CreatedAt,
		}
		if m.OrderID != nil {
			logs[i].OrderID = *m.OrderID
		}
	}
	return logs, nil
}
