package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// Status 发票状态
type Status string

const (
	StatusIssued Status = "EMITIDA" // 已开具
	StatusPaid   Status = "PAGADA"  // 已付款
	StatusVoided Status = "ANULADA" // 已作废
)

// Currency 币种
type Currency string

const (
	CurrencyCOP Currency = "COP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency 校验币种
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case CurrencyCOP, CurrencyUSD, CurrencyEUR:
		return c, nil
	}
	return "", ErrInvalidCurrency
}

// Item 发票明细,比订单明细多一个行税额
type Item struct {
	ID        uint
	InvoiceID uint
	BookID    uint
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	LineTax   decimal.Decimal
}

// Invoice 发票(聚合根),与订单一对一
type Invoice struct {
	ID             uint
	InvoiceNo      string
	OrderID        uint
	UserID         uint
	Status         Status
	Currency       Currency
	FiscalData     string
	PaymentMethod  string
	BillingAddress string
	Notes          string
	Items          []Item
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	IssuedAt       time.Time
	PaidAt         *time.Time
	VoidedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GenerateInvoiceNo 生成发票号:INV- + uuid前12位(大写)
func GenerateInvoiceNo() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV-" + strings.ToUpper(id[:12])
}

// FromOrder 根据订单生成发票
//
// 教学要点:
// 1. 明细从订单复制,每行追加 line_tax = line_subtotal × TaxRate
// 2. 汇总:subtotal = Σ行小计,tax = Σ行税额,total = subtotal - 订单折扣 + tax
// 3. 初始状态EMITIDA
func FromOrder(o *order.Order, currency Currency, fiscalData string) (*Invoice, error) {
	if len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]Item, len(o.Items))
	subtotal := decimal.Zero
	tax := decimal.Zero
	for i, it := range o.Items {
		lineSubtotal := pricing.LineSubtotal(it.UnitPrice, it.Quantity)
		lineTax := pricing.LineTax(lineSubtotal)
		items[i] = Item{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  lineSubtotal,
			LineTax:   lineTax,
		}
		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(lineTax)
	}

	now := time.Now()
	return &Invoice{
		InvoiceNo:      GenerateInvoiceNo(),
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         StatusIssued,
		Currency:       currency,
		FiscalData:     fiscalData,
		PaymentMethod:  string(o.PaymentMethod),
		BillingAddress: o.ShippingAddress,
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          subtotal.Sub(o.Discount).Add(tax),
		IssuedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MarkPaid EMITIDA → PAGADA
func (inv *Invoice) MarkPaid() error {
	if inv.Status != StatusIssued {
		return ErrInvalidTransition
	}
	now := time.Now()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now
	return nil
}

// Void 作废发票
// 只改变发票自身状态,不影响订单和库存
func (inv *Invoice) Void() error {
	if inv.Status == StatusVoided {
		return ErrInvalidTransition
	}
	now := time.Now()
	inv.Status = StatusVoided
	inv.VoidedAt = &now
	inv.UpdatedAt = now
	return nil
}

// DetailsUpdate 可修改的开票信息(nil表示不修改)
type DetailsUpdate struct {
	BillingAddress *string
	Notes          *string
}

// UpdateDetails 修改账单地址和备注
// 金额与明细开具后不可变;已作废的发票不能再修改
func (inv *Invoice) UpdateDetails(p DetailsUpdate) error {
	if inv.Status == StatusVoided {
		return ErrInvalidTransition
	}
	if p.BillingAddress != nil {
		inv.BillingAddress = strings.TrimSpace(*p.BillingAddress)
	}
	if p.Notes != nil {
		inv.Notes = strings.TrimSpace(*p.Notes)
	}
	inv.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 发票是否属于该用户
func (inv *Invoice) IsOwnedBy(userID uint) bool {
	return inv.UserID == userID
}
