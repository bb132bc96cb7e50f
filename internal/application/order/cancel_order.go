package order

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

const restockRemark = "订单取消回补"

// CancelOrderUseCase 取消订单
//
// 两种取消:
//  1. Cancel:只改订单状态,不动库存
//  2. CancelAndRestock:改状态的同时把每行数量补回台账(管理员操作)
//
// 只有PENDING/PAID的订单可以取消
type CancelOrderUseCase struct {
	orderRepo order.Repository
	ledger    *appinventory.Ledger
	txManager *mysql.TxManager
	cache     Cache
	publisher event.Publisher
	log       *zap.Logger
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	ledger *appinventory.Ledger,
	txManager *mysql.TxManager,
	cache Cache,
	publisher event.Publisher,
	log *zap.Logger,
) *CancelOrderUseCase {
	metrics.InitMetrics()
	if cache == nil {
		cache = NopCache{}
	}
	return &CancelOrderUseCase{
		orderRepo: orderRepo,
		ledger:    ledger,
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Cancel 取消订单(买家本人或管理员)
func (uc *CancelOrderUseCase) Cancel(ctx context.Context, actor Actor, orderID uint) (*order.Order, error) {
	return uc.cancel(ctx, actor, orderID, false)
}

// CancelAndRestock 取消订单并回补库存
func (uc *CancelOrderUseCase) CancelAndRestock(ctx context.Context, actor Actor, orderID uint) (*order.Order, error) {
	return uc.cancel(ctx, actor, orderID, true)
}

func (uc *CancelOrderUseCase) cancel(ctx context.Context, actor Actor, orderID uint, restock bool) (*order.Order, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "order.cancel")
	defer span.End()

	var (
		cancelled *order.Order
		touched   []*inventory.Inventory
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o) {
			return order.ErrForbidden
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(txCtx, o); err != nil {
			return err
		}

		if restock {
			// 按book_id升序加锁,与下单保持相同的加锁顺序
			demands := make([]appinventory.Demand, len(o.Items))
			for i, it := range o.Items {
				demands[i] = appinventory.Demand{BookID: it.BookID, Quantity: it.Quantity}
			}
			for _, d := range sortedDemands(demands) {
				inv, err := uc.ledger.Lock(txCtx, d.BookID)
				if err != nil {
					return err
				}
				if err := uc.ledger.Restock(txCtx, inv, d.Quantity, "", o.ID, restockRemark); err != nil {
					return err
				}
				touched = append(touched, inv)
			}
		}
		cancelled = o
		return nil
	})
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.OrdersCancelledTotal, map[string]string{"restock": strconv.FormatBool(restock)})
	evict(ctx, uc.cache, orderID, uc.log)

	uc.log.Info("订单已取消",
		zap.Uint("order_id", cancelled.ID),
		zap.Uint("operator", actor.UserID),
		zap.Bool("restocked", restock))

	evt := event.New(event.OrderCancelled, event.OrderCancelledPayload{OrderID: cancelled.ID, Restocked: restock})
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn("订单事件发布失败", zap.Uint("order_id", cancelled.ID), zap.Error(err))
	}
	uc.ledger.NotifyLowStock(ctx, touched...)

	return cancelled, nil
}

// sortedDemands 合并同一本书并按book_id升序
func sortedDemands(demands []appinventory.Demand) []appinventory.Demand {
	merged := appinventory.MergeDemands(demands)
	sort.Slice(merged, func(i, j int) bool { return merged[i].BookID < merged[j].BookID })
	return merged
}
