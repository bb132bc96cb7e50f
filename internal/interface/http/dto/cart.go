package dto

import (
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
)

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999"`
}

// CartItemResponse 购物车明细
type CartItemResponse struct {
	BookID    uint   `json:"book_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// CartResponse 购物车
type CartResponse struct {
	ID       uint               `json:"id"`
	Status   string             `json:"status"`
	Items    []CartItemResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
	Tax      string             `json:"tax"`
	Total    string             `json:"total"`
}

// ToCartResponse 领域实体 → 响应
func ToCartResponse(c *cart.Cart) *CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = CartItemResponse{
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			UnitPrice: pricing.Format(it.UnitPrice),
			Subtotal:  pricing.Format(it.Subtotal),
		}
	}
	return &CartResponse{
		ID:       c.ID,
		Status:   string(c.Status),
		Items:    items,
		Subtotal: pricing.Format(c.Subtotal),
		Tax:      pricing.Format(c.Tax),
		Total:    pricing.Format(c.Total),
	}
}
