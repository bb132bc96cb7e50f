package dto

import (
	"time"

	"github.com/xiebiao/bookstore-commerce/internal/domain/invoice"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// IssueInvoiceRequest 开票
type IssueInvoiceRequest struct {
	OrderID        uint   `json:"order_id" binding:"required"`
	Currency       string `json:"currency" binding:"omitempty,len=3" example:"COP"`
	FiscalData     string `json:"fiscal_data" binding:"max=500"`
	BillingAddress string `json:"billing_address" binding:"max=255"`
	Notes          string `json:"notes" binding:"max=500"`
}

// UpdateInvoiceRequest 修改开票信息,字段不传表示不修改
type UpdateInvoiceRequest struct {
	BillingAddress *string `json:"billing_address" binding:"omitempty,max=255"`
	Notes          *string `json:"notes" binding:"omitempty,max=500"`
}

// ToDomain 转换为领域参数
func (r *UpdateInvoiceRequest) ToDomain() invoice.DetailsUpdate {
	return invoice.DetailsUpdate{BillingAddress: r.BillingAddress, Notes: r.Notes}
}

// InvoiceItemResponse 发票明细,行税额保留四位小数
type InvoiceItemResponse struct {
	BookID    uint   `json:"book_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	LineTax   string `json:"line_tax" example:"3.8000"`
}

// InvoiceResponse 发票
type InvoiceResponse struct {
	ID             uint                  `json:"id"`
	InvoiceNo      string                `json:"invoice_no" example:"INV-3F9A1C7E2B4D"`
	OrderID        uint                  `json:"order_id"`
	Status         string                `json:"status" example:"EMITIDA"`
	Currency       string                `json:"currency"`
	FiscalData     string                `json:"fiscal_data,omitempty"`
	PaymentMethod  string                `json:"payment_method"`
	BillingAddress string                `json:"billing_address,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
	Subtotal       string                `json:"subtotal"`
	Tax            string                `json:"tax"`
	Total          string                `json:"total"`
	IssuedAt       time.Time             `json:"issued_at"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	VoidedAt       *time.Time            `json:"voided_at,omitempty"`
}

// ToInvoiceResponse 领域实体 → 响应
func ToInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: pricing.Format(it.UnitPrice),
			Subtotal:  pricing.Format(it.Subtotal),
			LineTax:   pricing.FormatMin(it.LineTax, 4),
		}
	}
	return &InvoiceResponse{
		ID:             inv.ID,
		InvoiceNo:      inv.InvoiceNo,
		OrderID:        inv.OrderID,
		Status:         string(inv.Status),
		Currency:       string(inv.Currency),
		FiscalData:     inv.FiscalData,
		PaymentMethod:  inv.PaymentMethod,
		BillingAddress: inv.BillingAddress,
		Notes:          inv.Notes,
		Items:          items,
		Subtotal:       pricing.Format(inv.Subtotal),
		Tax:            pricing.Format(inv.Tax),
		Total:          pricing.Format(inv.Total),
		IssuedAt:       inv.IssuedAt,
		PaidAt:         inv.PaidAt,
		VoidedAt:       inv.VoidedAt,
	}
}
