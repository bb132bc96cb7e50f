package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// Status 购物车状态
type Status string

const (
	StatusActive    Status = "ACTIVE"    // 使用中
	StatusConverted Status = "CONVERTED" // 已转为订单(终态)
	StatusAbandoned Status = "ABANDONED" // 已放弃(终态)
)

// Item 购物车明细
// UnitPrice是加入购物车时的价格快照,之后图书调价不影响已加入的明细
type Item struct {
	ID        uint
	CartID    uint
	BookID    uint
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Cart 购物车聚合根
//
// 教学要点:
// 1. 每个用户最多一个ACTIVE购物车
// 2. 同一本书只占一行,重复加入累加数量(按book_id合并)
// 3. 明细任何变化后都调用Recalculate重算汇总,不缓存旧值
// 4. CONVERTED/ABANDONED是终态,不允许再修改
type Cart struct {
	ID        uint
	UserID    uint
	Status    Status
	Items     []Item
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart 创建空购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	c := &Cart{
		UserID:    userID,
		Status:    StatusActive,
		Discount:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Recalculate()
	return c
}

// IsActive 是否可修改
func (c *Cart) IsActive() bool {
	return c.Status == StatusActive
}

// IsEmpty 是否没有明细
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// QuantityOf 某本书当前的数量
func (c *Cart) QuantityOf(bookID uint) int {
	for _, it := range c.Items {
		if it.BookID == bookID {
			return it.Quantity
		}
	}
	return 0
}

// AddItem 加入图书
// 已存在的书:数量累加,沿用原单价快照,重算该行小计
// 新书:以unitPrice作为价格快照新增一行
func (c *Cart) AddItem(bookID uint, quantity int, unitPrice decimal.Decimal) error {
	if !c.IsActive() {
		return ErrCartNotActive
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items[i].Quantity += quantity
			c.Items[i].Subtotal = pricing.LineSubtotal(c.Items[i].UnitPrice, c.Items[i].Quantity)
			c.Recalculate()
			return nil
		}
	}

	c.Items = append(c.Items, Item{
		CartID:    c.ID,
		BookID:    bookID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  pricing.LineSubtotal(unitPrice, quantity),
	})
	c.Recalculate()
	return nil
}

// RemoveItem 移除某本书
func (c *Cart) RemoveItem(bookID uint) error {
	if !c.IsActive() {
		return ErrCartNotActive
	}

	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// Abandon 放弃购物车
func (c *Cart) Abandon() error {
	if !c.IsActive() {
		return ErrCartNotActive
	}
	c.Status = StatusAbandoned
	c.UpdatedAt = time.Now()
	return nil
}

// MarkConverted 下单成功后标记为已转换
func (c *Cart) MarkConverted() error {
	if !c.IsActive() {
		return ErrCartNotActive
	}
	c.Status = StatusConverted
	c.UpdatedAt = time.Now()
	return nil
}

// Lines 计价行
func (c *Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}
	return lines
}

// Recalculate 通过计价引擎重算汇总金额
func (c *Cart) Recalculate() {
	totals := pricing.Calculate(c.Lines(), c.Discount)
	c.Subtotal = totals.Subtotal
	c.Tax = totals.Tax
	c.Total = totals.Total
	c.UpdatedAt = time.Now()
}
