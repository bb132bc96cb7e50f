// Package order 订单流水线用例
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

const tracerName = "order"

// PlaceOrderUseCase 下单用例(购物车下单 + 直接下单)
//
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、全有或全无的库存预检
//
// 核心问题:库存超卖
// 场景:某本书只剩1本,两个人同时下单
// 错误实现:
//  1. 查询库存 → 1本
//  2. 判断够不够 → 够(两个请求都看到1)
//  3. 扣减库存 → 卖出2本
//
// 正确实现:悲观锁 + 先检查后写入
//  1. SELECT ... FOR UPDATE 按book_id升序锁定所有相关台账行
//  2. 逐项检查可用数量,任意一项不足立即返回(此时还没有任何写入)
//  3. 创建订单(PENDING,金额冻结)
//  4. 逐项确认售出(台账 + 流水 + 图书旧计数器)
//  5. 购物车下单时把购物车标记为CONVERTED
//  6. COMMIT释放锁;之后再发布事件
type PlaceOrderUseCase struct {
	orderRepo order.Repository
	cartRepo  cart.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	ledger    *appinventory.Ledger
	txManager *mysql.TxManager
	publisher event.Publisher
	log       *zap.Logger
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	orderRepo order.Repository,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	ledger *appinventory.Ledger,
	txManager *mysql.TxManager,
	publisher event.Publisher,
	log *zap.Logger,
) *PlaceOrderUseCase {
	metrics.InitMetrics()
	return &PlaceOrderUseCase{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		ledger:    ledger,
		txManager: txManager,
		publisher: publisher,
		log:       log,
	}
}

// FromCartRequest 购物车下单请求
type FromCartRequest struct {
	UserID  uint // 买家用户ID(从JWT中提取)
	CartID  uint // 为0时使用用户当前的ACTIVE购物车
	Details order.Details
}

// DirectRequest 直接下单请求
type DirectRequest struct {
	UserID  uint
	Items   []DirectItem
	Details order.Details
}

// DirectItem 直接下单明细
type DirectItem struct {
	BookID   uint
	Quantity int
}

// FromCart 购物车下单
// 前置条件:购物车存在、属于当前用户、状态ACTIVE且不为空
// 订单明细复制购物车行的单价快照,不读图书当前价格
func (uc *PlaceOrderUseCase) FromCart(ctx context.Context, req FromCartRequest) (*order.Order, error) {
	return uc.place(ctx, "cart", func(txCtx context.Context) (*order.Order, []*inventory.Inventory, error) {
		// 1. 锁定购物车
		c, err := uc.lockCart(txCtx, req)
		if err != nil {
			return nil, nil, err
		}
		if c.IsEmpty() {
			return nil, nil, cart.ErrEmptyCart
		}

		items := make([]order.OrderItem, len(c.Items))
		for i, it := range c.Items {
			items[i] = order.OrderItem{BookID: it.BookID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		}

		// 2-4. 预检库存、创建订单、确认售出
		cartID := c.ID
		o, touched, err := uc.fulfil(txCtx, req.UserID, &cartID, items, req.Details)
		if err != nil {
			return nil, nil, err
		}

		// 5. 购物车标记为已转换
		if err := c.MarkConverted(); err != nil {
			return nil, nil, err
		}
		if err := uc.cartRepo.Save(txCtx, c); err != nil {
			return nil, nil, err
		}
		return o, touched, nil
	})
}

// Direct 直接下单(不经过购物车)
// 单价取图书当前售价,作为下单时刻的快照
func (uc *PlaceOrderUseCase) Direct(ctx context.Context, req DirectRequest) (*order.Order, error) {
	if len(req.Items) == 0 {
		return nil, order.ErrInvalidOrderItems
	}
	demands := make([]appinventory.Demand, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
		demands[i] = appinventory.Demand{BookID: it.BookID, Quantity: it.Quantity}
	}

	return uc.place(ctx, "direct", func(txCtx context.Context) (*order.Order, []*inventory.Inventory, error) {
		if _, err := uc.userRepo.FindByID(txCtx, req.UserID); err != nil {
			return nil, nil, err
		}

		// 同一本书出现多次时合并为一行
		merged := appinventory.MergeDemands(demands)
		items := make([]order.OrderItem, len(merged))
		for i, d := range merged {
			b, err := uc.bookRepo.FindByID(txCtx, d.BookID)
			if err != nil {
				return nil, nil, err
			}
			if !b.Active {
				return nil, nil, book.ErrBookInactive
			}
			items[i] = order.OrderItem{BookID: b.ID, Quantity: d.Quantity, UnitPrice: b.Price}
		}

		return uc.fulfil(txCtx, req.UserID, nil, items, req.Details)
	})
}

// fulfil 两条入口共用:预检 → 建单 → 确认售出
func (uc *PlaceOrderUseCase) fulfil(
	ctx context.Context,
	userID uint,
	cartID *uint,
	items []order.OrderItem,
	details order.Details,
) (*order.Order, []*inventory.Inventory, error) {
	demands := make([]appinventory.Demand, len(items))
	for i, it := range items {
		demands[i] = appinventory.Demand{BookID: it.BookID, Quantity: it.Quantity}
	}

	// 全部检查通过之前不做任何写入
	locked, err := uc.ledger.LockAvailable(ctx, demands)
	if err != nil {
		return nil, nil, err
	}

	o, err := order.NewOrder(order.GenerateOrderNo(), userID, items, decimal.Zero, details)
	if err != nil {
		return nil, nil, err
	}
	o.CartID = cartID
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		return nil, nil, err
	}

	touched := make([]*inventory.Inventory, 0, len(locked))
	for _, it := range o.Items {
		inv := locked[it.BookID]
		if err := uc.ledger.ConfirmSale(ctx, inv, it.Quantity, o.ID); err != nil {
			return nil, nil, err
		}
		touched = append(touched, inv)
	}
	return o, touched, nil
}

func (uc *PlaceOrderUseCase) lockCart(ctx context.Context, req FromCartRequest) (*cart.Cart, error) {
	if req.CartID == 0 {
		return uc.cartRepo.LockActiveByUserID(ctx, req.UserID)
	}

	c, err := uc.cartRepo.LockByID(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if c.UserID != req.UserID {
		return nil, order.ErrForbidden
	}
	if !c.IsActive() {
		return nil, cart.ErrCartNotActive
	}
	return c, nil
}

// place 事务 + 指标 + Span + 提交后的事件
func (uc *PlaceOrderUseCase) place(
	ctx context.Context,
	source string,
	fn func(txCtx context.Context) (*order.Order, []*inventory.Inventory, error),
) (*order.Order, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "order.place_"+source)
	defer span.End()

	start := time.Now()
	metrics.IncGauge(metrics.OrdersInProgress)
	defer metrics.DecGauge(metrics.OrdersInProgress)

	var (
		created *order.Order
		touched []*inventory.Inventory
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, invs, err := fn(txCtx)
		if err != nil {
			return err
		}
		created, touched = o, invs
		return nil
	})
	tracing.RecordError(span, err)
	if err != nil {
		metrics.IncCounterVec(metrics.OrdersFailedTotal, map[string]string{"source": source})
		return nil, err
	}

	metrics.IncCounterVec(metrics.OrdersCreatedTotal, map[string]string{"source": source})
	metrics.ObserveSince(metrics.OrderCreationDuration, start)

	uc.log.Info("订单已创建",
		zap.Uint("order_id", created.ID),
		zap.String("order_no", created.OrderNo),
		zap.Uint("user_id", created.UserID),
		zap.String("source", source),
		zap.String("total", pricing.Format(created.Total)))

	// 事务已提交,事件发布失败不影响下单结果
	evt := event.New(event.OrderCreated, event.OrderCreatedPayload{
		OrderID:   created.ID,
		OrderNo:   created.OrderNo,
		UserID:    created.UserID,
		Total:     pricing.Format(created.Total),
		ItemCount: created.ItemCount(),
	})
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn("订单事件发布失败", zap.Uint("order_id", created.ID), zap.Error(err))
	}
	uc.ledger.NotifyLowStock(ctx, touched...)

	return created, nil
}
