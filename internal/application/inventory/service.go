// Package inventory 库存台账用例
package inventory

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

const tracerName = "inventory"

// Service 库存台账用例集合
//
// 教学要点:
// 1. 每个用例一个事务:锁行 → 领域方法校验并修改 → 保存 + 流水
// 2. 同一本书的并发请求在行锁上排队,检查和修改是原子的,不会超卖
// 3. 低库存告警在事务提交之后发布
type Service struct {
	ledger           *Ledger
	invRepo          inventory.Repository
	logRepo          inventory.LogRepository
	bookRepo         book.Repository
	txManager        *mysql.TxManager
	defaultThreshold int
	log              *zap.Logger
}

// NewService 创建库存用例
func NewService(
	ledger *Ledger,
	invRepo inventory.Repository,
	logRepo inventory.LogRepository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
	defaultThreshold int,
	log *zap.Logger,
) *Service {
	return &Service{
		ledger:           ledger,
		invRepo:          invRepo,
		logRepo:          logRepo,
		bookRepo:         bookRepo,
		txManager:        txManager,
		defaultThreshold: defaultThreshold,
		log:              log,
	}
}

// CreateCommand 建档参数
type CreateCommand struct {
	BookID    uint
	Available int
	Threshold *int // nil使用配置的默认阈值
	Location  string
	Notes     string
}

// SettingsCommand 设置参数(nil表示不修改)
type SettingsCommand struct {
	Threshold *int
	Location  *string
	Notes     *string
}

// Create 为图书建立库存台账
// 业务规则:
// 1. 图书必须存在
// 2. 一本书只能有一条台账,重复建档返回InvalidTransition
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*inventory.Inventory, error) {
	threshold := s.defaultThreshold
	if cmd.Threshold != nil {
		threshold = *cmd.Threshold
	}

	var created *inventory.Inventory
	err := s.run(ctx, "create", func(txCtx context.Context) error {
		if _, err := s.bookRepo.FindByID(txCtx, cmd.BookID); err != nil {
			return err
		}

		if _, err := s.invRepo.FindByBookID(txCtx, cmd.BookID); err == nil {
			return inventory.ErrInventoryExists
		} else if !errors.Is(err, inventory.ErrInventoryNotFound) {
			return err
		}

		inv, err := inventory.NewInventory(cmd.BookID, cmd.Available, threshold)
		if err != nil {
			return err
		}
		inv.Location = cmd.Location
		inv.Notes = cmd.Notes

		if err := s.invRepo.Create(txCtx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("库存台账已建立", zap.Uint("book_id", created.BookID), zap.Int("available", created.Available))
	s.ledger.NotifyLowStock(ctx, created)
	return created, nil
}

// Reserve 预留库存
func (s *Service) Reserve(ctx context.Context, bookID uint, qty int, orderID uint) (*inventory.Inventory, error) {
	return s.mutate(ctx, "reserve", bookID, func(txCtx context.Context, inv *inventory.Inventory) error {
		return s.ledger.Reserve(txCtx, inv, qty, orderID)
	})
}

// Release 释放预留,预留不足时截断到0
func (s *Service) Release(ctx context.Context, bookID uint, qty int, orderID uint) (*inventory.Inventory, int, error) {
	var released int
	inv, err := s.mutate(ctx, "release", bookID, func(txCtx context.Context, inv *inventory.Inventory) error {
		n, err := s.ledger.Release(txCtx, inv, qty, orderID)
		released = n
		return err
	})
	return inv, released, err
}

// ConfirmSale 确认售出(先消耗预留,不足部分扣可用)
func (s *Service) ConfirmSale(ctx context.Context, bookID uint, qty int, orderID uint) (*inventory.Inventory, error) {
	return s.mutate(ctx, "confirm_sale", bookID, func(txCtx context.Context, inv *inventory.Inventory) error {
		return s.ledger.ConfirmSale(txCtx, inv, qty, orderID)
	})
}

// Restock 补货
func (s *Service) Restock(ctx context.Context, bookID uint, qty int, lot, remark string) (*inventory.Inventory, error) {
	inv, err := s.mutate(ctx, "restock", bookID, func(txCtx context.Context, inv *inventory.Inventory) error {
		return s.ledger.Restock(txCtx, inv, qty, lot, 0, remark)
	})
	if err == nil {
		s.log.Info("库存已补货",
			zap.Uint("book_id", bookID),
			zap.Int("quantity", qty),
			zap.String("lot", lot),
			zap.Int("available", inv.Available))
	}
	return inv, err
}

// UpdateSettings 更新阈值/仓位/备注,状态随阈值重新计算
func (s *Service) UpdateSettings(ctx context.Context, bookID uint, cmd SettingsCommand) (*inventory.Inventory, error) {
	return s.mutate(ctx, "settings", bookID, func(txCtx context.Context, inv *inventory.Inventory) error {
		if err := inv.UpdateSettings(cmd.Threshold, cmd.Location, cmd.Notes); err != nil {
			return err
		}
		return s.invRepo.Save(txCtx, inv)
	})
}

// Delete 删除台账,存在预留时拒绝
func (s *Service) Delete(ctx context.Context, bookID uint) error {
	return s.run(ctx, "delete", func(txCtx context.Context) error {
		inv, err := s.ledger.Lock(txCtx, bookID)
		if err != nil {
			return err
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}
		return s.invRepo.Delete(txCtx, bookID)
	})
}

// Get 查询台账
func (s *Service) Get(ctx context.Context, bookID uint) (*inventory.Inventory, error) {
	return s.invRepo.FindByBookID(ctx, bookID)
}

// ListLowStock 低库存与缺货列表
func (s *Service) ListLowStock(ctx context.Context) ([]*inventory.Inventory, error) {
	return s.invRepo.ListLowStock(ctx)
}

const (
	// DefaultLogLimit 未指定条数时返回的流水数
	DefaultLogLimit = 50
	// MaxLogLimit 单次最多返回的流水数
	MaxLogLimit = 200
)

// Logs 最近的库存流水
// limit<=0取默认值,超过上限按上限截断
func (s *Service) Logs(ctx context.Context, bookID uint, limit int) ([]*inventory.ChangeLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultLogLimit
	case limit > MaxLogLimit:
		limit = MaxLogLimit
	}
	return s.logRepo.ListByBookID(ctx, bookID, limit)
}

// mutate 锁定单行并执行修改,提交后检查低库存
func (s *Service) mutate(ctx context.Context, op string, bookID uint, fn func(ctx context.Context, inv *inventory.Inventory) error) (*inventory.Inventory, error) {
	var result *inventory.Inventory
	err := s.run(ctx, op, func(txCtx context.Context) error {
		inv, err := s.ledger.Lock(txCtx, bookID)
		if err != nil {
			return err
		}
		if err := fn(txCtx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.ledger.NotifyLowStock(ctx, result)
	return result, nil
}

// run 事务 + Span + 指标
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "inventory."+op)
	defer span.End()

	err := s.txManager.Transaction(ctx, fn)

	tracing.RecordError(span, err)
	metrics.IncCounterVec(metrics.InventoryOperationsTotal, map[string]string{"operation": op, "result": metrics.Result(err)})
	return err
}
