package dto

import (
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// OrderDetails 下单附加信息
type OrderDetails struct {
	PaymentMethod   string `json:"payment_method" binding:"omitempty,oneof=CARD PAYPAL TRANSFER" example:"CARD"`
	ShippingAddress string `json:"shipping_address" binding:"max=500"`
	Notes           string `json:"notes" binding:"max=1000"`
}

// ToDomain 转换为领域参数
func (d OrderDetails) ToDomain() order.Details {
	return order.Details{
		PaymentMethod:   order.PaymentMethod(d.PaymentMethod),
		ShippingAddress: d.ShippingAddress,
		Notes:           d.Notes,
	}
}

// PlaceFromCartRequest 购物车下单
// cart_id为空时使用当前ACTIVE购物车
type PlaceFromCartRequest struct {
	CartID uint `json:"cart_id"`
	OrderDetails
}

// CreateOrderRequest 直接下单
type CreateOrderRequest struct {
	Items []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	OrderDetails
}

// CreateOrderItemRequest 订单明细项
type CreateOrderItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateOrderRequest 后台修改订单
type UpdateOrderRequest struct {
	Status          *string `json:"status" binding:"omitempty,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED"`
	PaymentMethod   *string `json:"payment_method" binding:"omitempty,oneof=CARD PAYPAL TRANSFER"`
	ShippingAddress *string `json:"shipping_address" binding:"omitempty,max=500"`
	Notes           *string `json:"notes" binding:"omitempty,max=1000"`
	TrackingNumber  *string `json:"tracking_number" binding:"omitempty,max=100"`
}

// ToDomain 转换为领域参数
func (r UpdateOrderRequest) ToDomain() (order.UpdateParams, error) {
	params := order.UpdateParams{
		ShippingAddress: r.ShippingAddress,
		Notes:           r.Notes,
		TrackingNumber:  r.TrackingNumber,
	}
	if r.Status != nil {
		s, err := order.ParseStatus(*r.Status)
		if err != nil {
			return params, err
		}
		params.Status = &s
	}
	if r.PaymentMethod != nil {
		pm := order.PaymentMethod(*r.PaymentMethod)
		params.PaymentMethod = &pm
	}
	return params, nil
}

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	BookID    uint   `json:"book_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// OrderResponse 订单
type OrderResponse struct {
	ID              uint                `json:"id"`
	OrderNo         string              `json:"order_no" example:"ORD2410171530429F3A1C7E"`
	UserID          uint                `json:"user_id"`
	CartID          *uint               `json:"cart_id,omitempty"`
	Status          string              `json:"status" example:"PENDING"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	Notes           string              `json:"notes,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	InvoiceNumber   string              `json:"invoice_number,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	Subtotal        string              `json:"subtotal" example:"20.00"`
	Discount        string              `json:"discount" example:"0.00"`
	Tax             string              `json:"tax" example:"3.80"`
	Total           string              `json:"total" example:"23.80"`
	CreatedAt       string              `json:"created_at"`
}

// ToOrderResponse 领域实体 → 响应
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: pricing.Format(it.UnitPrice),
			Subtotal:  pricing.Format(it.Subtotal),
		}
	}
	return &OrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		CartID:          o.CartID,
		Status:          o.Status.String(),
		PaymentMethod:   string(o.PaymentMethod),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		TrackingNumber:  o.TrackingNumber,
		InvoiceNumber:   o.InvoiceNumber,
		Items:           items,
		Subtotal:        pricing.Format(o.Subtotal),
		Discount:        pricing.Format(o.Discount),
		Tax:             pricing.Format(o.Tax),
		Total:           pricing.Format(o.Total),
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
