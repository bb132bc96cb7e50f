package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-commerce/internal/domain/invoice"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

// invoiceRepository 发票仓储实现
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository 创建发票仓储
func NewInvoiceRepository(db *gorm.DB) invoice.Repository {
	return &invoiceRepository{db: db}
}

// Create 创建发票及明细
// order_id唯一索引冲突说明该订单已开票 → ErrDuplicateEntry
func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := toInvoiceModel(inv)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry
		}
		return apperrors.Wrap(err, "创建发票失败")
	}

	inv.ID = model.ID
	for i := range inv.Items {
		inv.Items[i].ID = model.Items[i].ID
		inv.Items[i].InvoiceID = model.ID
	}
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*invoice.Invoice, error) {
	return r.first(r.getDB(ctx).Where("id = ?", id))
}

func (r *invoiceRepository) FindByOrderID(ctx context.Context, orderID uint) (*invoice.Invoice, error) {
	return r.first(r.getDB(ctx).Where("order_id = ?", orderID))
}

// UpdateStatus 只更新状态相关字段,金额和明细开具后不可变
func (r *invoiceRepository) UpdateStatus(ctx context.Context, inv *invoice.Invoice) error {
	result := r.getDB(ctx).Model(&InvoiceModel{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
		"status":     string(inv.Status),
		"paid_at":    inv.PaidAt,
		"voided_at":  inv.VoidedAt,
		"updated_at": inv.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新发票失败")
	}
	if result.RowsAffected == 0 {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

// UpdateDetails 更新账单地址和备注
func (r *invoiceRepository) UpdateDetails(ctx context.Context, inv *invoice.Invoice) error {
	result := r.getDB(ctx).Model(&InvoiceModel{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
		"billing_address": inv.BillingAddress,
		"notes":           inv.Notes,
		"updated_at":      inv.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新发票失败")
	}
	if result.RowsAffected == 0 {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*invoice.Invoice, int64, error) {
	var models []InvoiceModel
	var total int64

	page, pageSize = normalizePage(page, pageSize)
	db := r.getDB(ctx)

	if err := db.Model(&InvoiceModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发票总数失败")
	}

	err := db.Where("user_id = ?", userID).
		Preload("Items").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询发票列表失败")
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = toInvoiceEntity(&models[i])
	}
	return result, total, nil
}

func (r *invoiceRepository) first(query *gorm.DB) (*invoice.Invoice, error) {
	var model InvoiceModel
	if err := query.Preload("Items").First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, invoice.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(err, "查询发票失败")
	}
	return toInvoiceEntity(&model), nil
}

func (r *invoiceRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toInvoiceModel(inv *invoice.Invoice) *InvoiceModel {
	items := make([]InvoiceItemModel, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemModel{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
			LineTax:   it.LineTax,
		}
	}
	return &InvoiceModel{
		ID:             inv.ID,
		InvoiceNo:      inv.InvoiceNo,
		OrderID:        inv.OrderID,
		UserID:         inv.UserID,
		Status:         string(inv.Status),
		Currency:       string(inv.Currency),
		FiscalData:     inv.FiscalData,
		PaymentMethod:  inv.PaymentMethod,
		BillingAddress: inv.BillingAddress,
		Notes:          inv.Notes,
		Subtotal:       inv.Subtotal,
		Tax:            inv.Tax,
		Total:          inv.Total,
		Items:          items,
		IssuedAt:       inv.IssuedAt,
		PaidAt:         inv.PaidAt,
		VoidedAt:       inv.VoidedAt,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func toInvoiceEntity(m *InvoiceModel) *invoice.Invoice {
	items := make([]invoice.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = invoice.Item{
			ID:        it.ID,
			InvoiceID: it.InvoiceID,
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
			LineTax:   it.LineTax,
		}
	}
	return &invoice.Invoice{
		ID:             m.ID,
		InvoiceNo:      m.InvoiceNo,
		OrderID:        m.OrderID,
		UserID:         m.UserID,
		Status:         invoice.Status(m.Status),
		Currency:       invoice.Currency(m.Currency),
		FiscalData:     m.FiscalData,
		PaymentMethod:  m.PaymentMethod,
		BillingAddress: m.BillingAddress,
		Notes:          m.Notes,
		Items:          items,
		Subtotal:       m.Subtotal,
		Tax:            m.Tax,
		Total:          m.Total,
		IssuedAt:       m.IssuedAt,
		PaidAt:         m.PaidAt,
		VoidedAt:       m.VoidedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
