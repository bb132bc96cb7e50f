package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
)

// Actor 发起操作的用户(从JWT中提取)
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// CanAccess 管理员可以访问所有订单,买家只能访问自己的
func (a Actor) CanAccess(o *order.Order) bool {
	return a.IsAdmin || o.IsOwnedBy(a.UserID)
}

const cacheName = "order"

// QueryOrderUseCase 订单查询
//
// 教学要点:详情走Cache-Aside
//  1. 先查Redis,命中直接返回
//  2. 未命中查数据库,回填缓存
//  3. 缓存出错只记录日志,降级为直接查库
type QueryOrderUseCase struct {
	orderRepo order.Repository
	cache     Cache
	log       *zap.Logger
}

// NewQueryOrderUseCase 创建订单查询用例
func NewQueryOrderUseCase(orderRepo order.Repository, cache Cache, log *zap.Logger) *QueryOrderUseCase {
	metrics.InitMetrics()
	if cache == nil {
		cache = NopCache{}
	}
	return &QueryOrderUseCase{orderRepo: orderRepo, cache: cache, log: log}
}

// Get 查询订单详情
func (uc *QueryOrderUseCase) Get(ctx context.Context, actor Actor, orderID uint) (*order.Order, error) {
	o, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o) {
		return nil, order.ErrForbidden
	}
	return o, nil
}

// List 分页查询买家自己的订单
func (uc *QueryOrderUseCase) List(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
}

func (uc *QueryOrderUseCase) load(ctx context.Context, orderID uint) (*order.Order, error) {
	cached, err := uc.cache.Get(ctx, orderID)
	switch {
	case err != nil:
		metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"cache": cacheName, "result": "error"})
		uc.log.Warn("读取订单缓存失败", zap.Uint("order_id", orderID), zap.Error(err))
	case cached != nil:
		metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"cache": cacheName, "result": "hit"})
		return cached, nil
	default:
		metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"cache": cacheName, "result": "miss"})
	}

	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, o); err != nil {
		uc.log.Warn("写入订单缓存失败", zap.Uint("order_id", orderID), zap.Error(err))
	}
	return o, nil
}
