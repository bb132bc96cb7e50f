package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// OrderStatus 订单状态
// 教学要点:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 定义为类型别名,便于添加方法
// 3. 状态值设计:1-5递增,便于理解流转方向
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 1 // 待支付
	OrderStatusPaid      OrderStatus = 2 // 已支付
	OrderStatusShipped   OrderStatus = 3 // 已发货
	OrderStatusDelivered OrderStatus = 4 // 已送达
	OrderStatusCancelled OrderStatus = 5 // 已取消
)

var statusNames = map[OrderStatus]string{
	OrderStatusPending:   "PENDING",
	OrderStatusPaid:      "PAID",
	OrderStatusShipped:   "SHIPPED",
	OrderStatusDelivered: "DELIVERED",
	OrderStatusCancelled: "CANCELLED",
}

// String 实现Stringer接口(方便日志输出和接口返回)
func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsValid 是否为已定义的状态
func (s OrderStatus) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus 从名称解析状态
func ParseStatus(name string) (OrderStatus, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrInvalidStatus
}

// PaymentMethod 支付方式
// 只是记录下来的标签,系统不对接任何支付网关
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "CARD"
	PaymentPaypal   PaymentMethod = "PAYPAL"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// IsValid 校验支付方式
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentPaypal, PaymentTransfer:
		return true
	}
	return false
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根,OrderItem是子实体
// 2. 明细和金额是下单时刻的冻结快照,之后购物车或图书的变化不影响订单
// 3. 金额全部使用decimal,避免浮点误差
type Order struct {
	ID              uint
	OrderNo         string // 订单号(业务主键,全局唯一)
	UserID          uint   // 买家用户ID
	CartID          *uint  // 来源购物车,直接下单时为nil
	Items           []OrderItem
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          OrderStatus
	PaymentMethod   PaymentMethod
	ShippingAddress string
	Notes           string
	TrackingNumber  string
	InvoiceNumber   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem 订单明细项
// 教学要点:
// 1. 不是独立聚合根,必须通过Order访问
// 2. UnitPrice记录"下单时的价格"(历史价格快照)
// 3. 不直接关联Book对象,只保存BookID(避免跨聚合引用)
type OrderItem struct {
	ID        uint
	OrderID   uint
	BookID    uint
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Details 下单时填写的附加信息
type Details struct {
	PaymentMethod   PaymentMethod
	ShippingAddress string
	Notes           string
}

// NewOrder 创建新订单(工厂方法)
// 教学要点:
// 1. 工厂方法封装创建逻辑,保证实体的有效性
// 2. 明细会被复制一份,调用方之后修改切片不会影响订单
// 3. 金额由计价引擎算出,初始状态为Pending(待支付)
func NewOrder(orderNo string, userID uint, items []OrderItem, discount decimal.Decimal, details Details) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	if details.PaymentMethod == "" {
		details.PaymentMethod = PaymentCard
	}
	if !details.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	frozen := make([]OrderItem, len(items))
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		frozen[i] = OrderItem{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  pricing.LineSubtotal(it.UnitPrice, it.Quantity),
		}
		lines[i] = pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity}
	}

	totals := pricing.Calculate(lines, discount)
	now := time.Now()
	return &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		Items:           frozen,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          OrderStatusPending,
		PaymentMethod:   details.PaymentMethod,
		ShippingAddress: details.ShippingAddress,
		Notes:           details.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsFulfilled 已发货或已送达
func (o *Order) IsFulfilled() bool {
	return o.Status == OrderStatusShipped || o.Status == OrderStatusDelivered
}

// Cancel 取消订单
// 只有待支付和已支付的订单可以取消
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusPaid {
		return ErrInvalidStatusTransition
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateParams 后台修改订单的参数,nil表示不修改
type UpdateParams struct {
	Status          *OrderStatus
	PaymentMethod   *PaymentMethod
	ShippingAddress *string
	Notes           *string
	TrackingNumber  *string
}

// ApplyUpdate 修改订单
//
// 设计说明:
// 这里只有一条状态规则:已发货/已送达的订单不能改为已取消。
// 其余状态变化全部放行,不是完整的状态机。
func (o *Order) ApplyUpdate(p UpdateParams) error {
	if p.Status != nil {
		if !p.Status.IsValid() {
			return ErrInvalidStatus
		}
		if *p.Status == OrderStatusCancelled && o.IsFulfilled() {
			return ErrInvalidStatusTransition
		}
	}
	if p.PaymentMethod != nil && !p.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}

	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.ShippingAddress != nil {
		o.ShippingAddress = *p.ShippingAddress
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.TrackingNumber != nil {
		o.TrackingNumber = *p.TrackingNumber
	}
	o.UpdatedAt = time.Now()
	return nil
}

// CanDelete 已发货/已送达的订单不能删除
func (o *Order) CanDelete() error {
	if o.IsFulfilled() {
		return ErrCannotDelete
	}
	return nil
}

// AttachInvoice 记录开票号
func (o *Order) AttachInvoice(invoiceNo string) {
	o.InvoiceNumber = invoiceNo
	o.UpdatedAt = time.Now()
}

// IsOwnedBy 检查订单是否属于指定用户
// 教学要点:权限校验,防止用户访问他人订单
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// ItemCount 商品总件数
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
