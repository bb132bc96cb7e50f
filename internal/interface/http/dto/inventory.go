package dto

import (
	"time"

	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
)

// CreateInventoryRequest 建立库存台账
type CreateInventoryRequest struct {
	BookID    uint   `json:"book_id" binding:"required"`
	Available int    `json:"available" binding:"min=0"`
	Threshold *int   `json:"threshold" binding:"omitempty,min=0"`
	Location  string `json:"location" binding:"max=100"`
	Notes     string `json:"notes" binding:"max=500"`
}

// InventorySettingsRequest 修改阈值/位置/备注
type InventorySettingsRequest struct {
	Threshold *int    `json:"threshold" binding:"omitempty,min=0"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	Notes     *string `json:"notes" binding:"omitempty,max=500"`
}

// QuantityRequest 预留/释放
type QuantityRequest struct {
	Quantity int  `json:"quantity" binding:"required,min=1"`
	OrderID  uint `json:"order_id"`
}

// RestockRequest 补货
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Lot      string `json:"lot" binding:"max=100"`
	Remark   string `json:"remark" binding:"max=500"`
}

// InventoryResponse 库存台账
type InventoryResponse struct {
	BookID          uint       `json:"book_id"`
	Available       int        `json:"available"`
	Reserved        int        `json:"reserved"`
	Threshold       int        `json:"threshold"`
	State           string     `json:"state" example:"ACTIVE"`
	Location        string     `json:"location,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	LastRestockLot  string     `json:"last_restock_lot,omitempty"`
	LastRestockedAt *time.Time `json:"last_restocked_at,omitempty"`
	Released        *int       `json:"released,omitempty"` // 释放接口返回实际释放数量
}

// ToInventoryResponse 领域实体 → 响应
func ToInventoryResponse(inv *inventory.Inventory) *InventoryResponse {
	return &InventoryResponse{
		BookID:          inv.BookID,
		Available:       inv.Available,
		Reserved:        inv.Reserved,
		Threshold:       inv.Threshold,
		State:           string(inv.State),
		Location:        inv.Location,
		Notes:           inv.Notes,
		LastRestockLot:  inv.LastRestockLot,
		LastRestockedAt: inv.LastRestockedAt,
	}
}

// InventoryLogResponse 变更流水
type InventoryLogResponse struct {
	Type            string    `json:"type"`
	Quantity        int       `json:"quantity"`
	AvailableBefore int       `json:"available_before"`
	AvailableAfter  int       `json:"available_after"`
	ReservedBefore  int       `json:"reserved_before"`
	ReservedAfter   int       `json:"reserved_after"`
	OrderID         uint      `json:"order_id,omitempty"`
	Lot             string    `json:"lot,omitempty"`
	Remark          string    `json:"remark,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToInventoryLogResponses 领域实体 → 响应
func ToInventoryLogResponses(logs []*inventory.ChangeLog) []InventoryLogResponse {
	out := make([]InventoryLogResponse, len(logs))
	for i, l := range logs {
		out[i] = InventoryLogResponse{
			Type:            string(l.ChangeType),
			Quantity:        l.Quantity,
			AvailableBefore: l.BeforeAvailable,
			AvailableAfter:  l.AfterAvailable,
			ReservedBefore:  l.BeforeReserved,
			ReservedAfter:   l.AfterReserved,
			OrderID:         l.OrderID,
			Lot:             l.Lot,
			Remark:          l.Remark,
			CreatedAt:       l.CreatedAt,
		}
	}
	return out
}
