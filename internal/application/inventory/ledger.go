package inventory

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
)

// Demand 某本书的需求数量
type Demand struct {
	BookID   uint
	Quantity int
}

// Ledger 库存台账的事务内操作
//
// 教学要点:
// 1. Ledger本身不开事务,调用方(库存用例、下单流水线)负责用TxManager包住
// 2. 每次变更 = 领域方法修改计数 + 保存台账 + 追加流水,三步在同一事务里
// 3. 补货/售出同时维护books.stock旧计数器
type Ledger struct {
	invRepo   inventory.Repository
	logRepo   inventory.LogRepository
	bookRepo  book.Repository
	publisher event.Publisher
	log       *zap.Logger
}

// NewLedger 创建台账
func NewLedger(
	invRepo inventory.Repository,
	logRepo inventory.LogRepository,
	bookRepo book.Repository,
	publisher event.Publisher,
	log *zap.Logger,
) *Ledger {
	metrics.InitMetrics()
	return &Ledger{
		invRepo:   invRepo,
		logRepo:   logRepo,
		bookRepo:  bookRepo,
		publisher: publisher,
		log:       log,
	}
}

// Lock 锁定单本书的台账行
func (l *Ledger) Lock(ctx context.Context, bookID uint) (*inventory.Inventory, error) {
	return l.invRepo.LockByBookID(ctx, bookID)
}

// LockAvailable 锁定多本书的台账并预检可用数量
//
// 教学要点:
// 1. 先全部检查,再做任何写入:任意一本不足就整体失败,不会出现"一半扣了一半没扣"
// 2. 按book_id升序加锁,两个订单包含相同几本书时不会互相等待形成死锁
// 3. 同一本书出现多次时合并数量再检查
func (l *Ledger) LockAvailable(ctx context.Context, demands []Demand) (map[uint]*inventory.Inventory, error) {
	merged := MergeDemands(demands)

	ids := make([]uint, 0, len(merged))
	for _, d := range merged {
		ids = append(ids, d.BookID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[uint]*inventory.Inventory, len(ids))
	for _, id := range ids {
		inv, err := l.invRepo.LockByBookID(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = inv
	}

	for _, d := range merged {
		inv := locked[d.BookID]
		if inv.Available < d.Quantity {
			return nil, inventory.InsufficientStock(d.BookID, inv.Available, d.Quantity)
		}
	}
	return locked, nil
}

// Reserve 预留
func (l *Ledger) Reserve(ctx context.Context, inv *inventory.Inventory, qty int, orderID uint) error {
	before := inv.Snapshot()
	if err := inv.Reserve(qty); err != nil {
		return err
	}
	return l.persist(ctx, inv, inventory.NewChangeLog(inventory.ChangeTypeReserve, qty, before, inv).WithOrder(orderID))
}

// Release 释放预留,返回实际释放数量(预留不足时截断)
func (l *Ledger) Release(ctx context.Context, inv *inventory.Inventory, qty int, orderID uint) (int, error) {
	before := inv.Snapshot()
	released, err := inv.Release(qty)
	if err != nil {
		return 0, err
	}
	changeLog := inventory.NewChangeLog(inventory.ChangeTypeRelease, released, before, inv).WithOrder(orderID)
	if released < qty {
		changeLog.WithRemark("预留不足,已截断")
	}
	return released, l.persist(ctx, inv, changeLog)
}

// ConfirmSale 确认售出并同步扣减图书库存计数
func (l *Ledger) ConfirmSale(ctx context.Context, inv *inventory.Inventory, qty int, orderID uint) error {
	before := inv.Snapshot()
	if err := inv.ConfirmSale(qty); err != nil {
		return err
	}
	if err := l.syncBookStock(ctx, inv.BookID, -qty); err != nil {
		return err
	}
	return l.persist(ctx, inv, inventory.NewChangeLog(inventory.ChangeTypeSale, qty, before, inv).WithOrder(orderID))
}

// Restock 补货并同步增加图书库存计数
func (l *Ledger) Restock(ctx context.Context, inv *inventory.Inventory, qty int, lot string, orderID uint, remark string) error {
	before := inv.Snapshot()
	if err := inv.Restock(qty, lot); err != nil {
		return err
	}
	if err := l.syncBookStock(ctx, inv.BookID, qty); err != nil {
		return err
	}
	changeLog := inventory.NewChangeLog(inventory.ChangeTypeRestock, qty, before, inv).
		WithOrder(orderID).
		WithLot(lot).
		WithRemark(remark)
	return l.persist(ctx, inv, changeLog)
}

func (l *Ledger) persist(ctx context.Context, inv *inventory.Inventory, changeLog *inventory.ChangeLog) error {
	if err := l.invRepo.Save(ctx, inv); err != nil {
		return err
	}
	return l.logRepo.Append(ctx, changeLog)
}

// syncBookStock 维护books.stock旧计数器
// 旧计数器可能与台账不一致(历史数据),扣减时截断到0,不因此让售出失败
func (l *Ledger) syncBookStock(ctx context.Context, bookID uint, delta int) error {
	if delta < 0 {
		b, err := l.bookRepo.FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if b.Stock < -delta {
			delta = -b.Stock
		}
		if delta == 0 {
			return nil
		}
	}
	return l.bookRepo.UpdateStock(ctx, bookID, delta)
}

// NotifyLowStock 事务提交后为低库存/缺货的台账发布告警
// 发布失败只记录日志
func (l *Ledger) NotifyLowStock(ctx context.Context, invs ...*inventory.Inventory) {
	for _, inv := range invs {
		if inv == nil || !inv.NeedsAttention() {
			continue
		}
		metrics.IncCounter(metrics.LowStockAlertsTotal)

		evt := event.New(event.InventoryLowStock, event.LowStockPayload{
			BookID:    inv.BookID,
			Available: inv.Available,
			Threshold: inv.Threshold,
			State:     string(inv.State),
		})
		if err := l.publisher.Publish(ctx, evt); err != nil {
			l.log.Warn("低库存事件发布失败", zap.Uint("book_id", inv.BookID), zap.Error(err))
		}
	}
}

// MergeDemands 按book_id合并数量,保持首次出现的顺序
func MergeDemands(demands []Demand) []Demand {
	index := make(map[uint]int, len(demands))
	merged := make([]Demand, 0, len(demands))
	for _, d := range demands {
		if i, ok := index[d.BookID]; ok {
			merged[i].Quantity += d.Quantity
			continue
		}
		index[d.BookID] = len(merged)
		merged = append(merged, d)
	}
	return merged
}
