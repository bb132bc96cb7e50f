package inventory

import "time"

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeReserve ChangeType = "RESERVE" // 预留
	ChangeTypeRelease ChangeType = "RELEASE" // 释放
	ChangeTypeSale    ChangeType = "SALE"    // 确认售出
	ChangeTypeRestock ChangeType = "RESTOCK" // 补货
)

// ChangeLog 库存变更日志
//
// 设计原则:
//   - 只增不改(Append-Only),与台账变更在同一事务内写入
//   - 记录变更前后的可用/预留数量,便于对账
//   - 可选关联订单ID与补货批次
type ChangeLog struct {
	ID              uint
	BookID          uint
	ChangeType      ChangeType
	Quantity        int
	BeforeAvailable int
	AfterAvailable  int
	BeforeReserved  int
	AfterReserved   int
	OrderID         uint
	Lot             string
	Remark          string
	CreatedAt       time.Time
}

// NewChangeLog 根据变更前快照和变更后的台账生成日志
func NewChangeLog(changeType ChangeType, qty int, before Snapshot, after *Inventory) *ChangeLog {
	return &ChangeLog{
		BookID:          after.BookID,
		ChangeType:      changeType,
		Quantity:        qty,
		BeforeAvailable: before.Available,
		AfterAvailable:  after.Available,
		BeforeReserved:  before.Reserved,
		AfterReserved:   after.Reserved,
		CreatedAt:       time.Now(),
	}
}

// WithOrder 关联订单
func (l *ChangeLog) WithOrder(orderID uint) *ChangeLog {
	l.OrderID = orderID
	return l
}

// WithLot 记录补货批次
func (l *ChangeLog) WithLot(lot string) *ChangeLog {
	l.Lot = lot
	return l
}

// WithRemark 备注
func (l *ChangeLog) WithRemark(remark string) *ChangeLog {
	l.Remark = remark
	return l
}
