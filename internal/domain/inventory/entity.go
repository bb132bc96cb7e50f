package inventory

import (
	"time"
)

// DefaultThreshold 默认低库存阈值
const DefaultThreshold = 5

// State 库存状态
// 教学要点:
// 1. State不是独立可写的字段,而是Available与Threshold的纯函数
// 2. 每次变更后由recompute重新计算,禁止手动设置
type State string

const (
	StateActive     State = "ACTIVE"       // 正常
	StateLowStock   State = "LOW_STOCK"    // 低库存(可用 ≤ 阈值)
	StateOutOfStock State = "OUT_OF_STOCK" // 缺货(可用 = 0)
)

// DeriveState 根据可用库存和阈值计算状态
func DeriveState(available, threshold int) State {
	switch {
	case available <= 0:
		return StateOutOfStock
	case available <= threshold:
		return StateLowStock
	default:
		return StateActive
	}
}

// Inventory 库存台账记录(每本书一条)
//
// 教学要点:
// 1. Available:当前可售数量
// 2. Reserved:为进行中的订单预留的数量
// 3. 预留 → 确认售出 / 释放 的两阶段模型,避免"下单未付款"长期占用可售库存
// 4. 同一本书的所有操作必须串行化(由应用层在事务中加行锁保证)
type Inventory struct {
	ID              uint
	BookID          uint
	Available       int
	Reserved        int
	Threshold       int
	State           State
	Location        string     // 仓库位置
	Notes           string     // 备注
	LastRestockLot  string     // 最近一次补货批次
	LastRestockedAt *time.Time // 最近一次补货时间
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot 变更前后的计数快照(用于写变更日志)
type Snapshot struct {
	Available int
	Reserved  int
}

// NewInventory 创建库存记录
func NewInventory(bookID uint, available, threshold int) (*Inventory, error) {
	if bookID == 0 {
		return nil, ErrInvalidBookID
	}
	if available < 0 {
		return nil, ErrNegativeStock
	}
	if threshold < 0 {
		return nil, ErrInvalidThreshold
	}

	now := time.Now()
	inv := &Inventory{
		BookID:    bookID,
		Available: available,
		Threshold: threshold,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inv.recompute()
	return inv, nil
}

// Snapshot 返回当前计数
func (i *Inventory) Snapshot() Snapshot {
	return Snapshot{Available: i.Available, Reserved: i.Reserved}
}

// Total 账面总量 = 可用 + 预留
func (i *Inventory) Total() int {
	return i.Available + i.Reserved
}

// Reserve 预留库存
// 规则:Available ≥ qty 才能预留,失败时计数不变
func (i *Inventory) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if i.Available < qty {
		return InsufficientStock(i.BookID, i.Available, qty)
	}

	i.Available -= qty
	i.Reserved += qty
	i.recompute()
	return nil
}

// Release 释放预留(Reserve的逆操作)
// 策略:预留不足qty时按实际预留量释放(截断),不允许Reserved为负
// 返回实际释放的数量
func (i *Inventory) Release(qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	released := qty
	if i.Reserved < released {
		released = i.Reserved
	}

	i.Reserved -= released
	i.Available += released
	i.recompute()
	return released, nil
}

// ConfirmSale 确认售出(永久扣减)
//
// 教学要点:
// 1. 预留充足:直接从Reserved扣减,Available不变
// 2. 预留不足(直接下单跳过了预留):先用完Reserved,剩余部分从Available扣减
// 3. 任何情况下 Available+Reserved 恰好减少qty
func (i *Inventory) ConfirmSale(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if i.Reserved >= qty {
		i.Reserved -= qty
		i.recompute()
		return nil
	}

	remainder := qty - i.Reserved
	if i.Available < remainder {
		return InsufficientStock(i.BookID, i.Available, remainder)
	}

	i.Reserved = 0
	i.Available -= remainder
	i.recompute()
	return nil
}

// Restock 补货
func (i *Inventory) Restock(qty int, lot string) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	now := time.Now()
	i.Available += qty
	i.LastRestockedAt = &now
	if lot != "" {
		i.LastRestockLot = lot
	}
	i.recompute()
	return nil
}

// UpdateSettings 更新阈值、仓库位置、备注(nil表示不修改)
func (i *Inventory) UpdateSettings(threshold *int, location, notes *string) error {
	if threshold != nil {
		if *threshold < 0 {
			return ErrInvalidThreshold
		}
		i.Threshold = *threshold
	}
	if location != nil {
		i.Location = *location
	}
	if notes != nil {
		i.Notes = *notes
	}
	i.recompute()
	return nil
}

// CanDelete 仍有预留库存时不允许删除
func (i *Inventory) CanDelete() error {
	if i.Reserved > 0 {
		return ErrHasReservations
	}
	return nil
}

// NeedsAttention 低库存或缺货
func (i *Inventory) NeedsAttention() bool {
	return i.State == StateLowStock || i.State == StateOutOfStock
}

// recompute 重新计算状态并刷新修改时间
func (i *Inventory) recompute() {
	i.State = DeriveState(i.Available, i.Threshold)
	i.UpdatedAt = time.Now()
}
