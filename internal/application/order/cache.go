package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
)

// Cache 订单详情读缓存,由redis.OrderCache实现
// Get未命中时返回(nil, nil)
type Cache interface {
	Get(ctx context.Context, orderID uint) (*order.Order, error)
	Set(ctx context.Context, o *order.Order) error
	Delete(ctx context.Context, orderID uint) error
}

// NopCache 不缓存(未启用Redis时使用)
type NopCache struct{}

func (NopCache) Get(context.Context, uint) (*order.Order, error) { return nil, nil }
func (NopCache) Set(context.Context, *order.Order) error         { return nil }
func (NopCache) Delete(context.Context, uint) error              { return nil }

// evictDelay 第二次删除缓存的延迟
// 需要大于一次"读库+回填"的耗时
var evictDelay = 500 * time.Millisecond

// evict 写操作提交后删除订单缓存(延迟双删)
//
// 教学要点:
// 1. 读请求未命中时会先读库再回填,如果它在写事务提交前读到旧数据、
//    在第一次删除之后才回填,旧数据会在缓存里留到TTL过期
// 2. 延迟evictDelay后再删一次,把这种回填清掉
// 3. 两次删除失败都只记日志:数据库已经提交,缓存最多旧到TTL
func evict(ctx context.Context, cache Cache, orderID uint, log *zap.Logger) {
	if err := cache.Delete(ctx, orderID); err != nil {
		log.Warn("删除订单缓存失败", zap.Uint("order_id", orderID), zap.Error(err))
	}

	time.AfterFunc(evictDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cache.Delete(ctx, orderID); err != nil {
			log.Warn("延迟删除订单缓存失败", zap.Uint("order_id", orderID), zap.Error(err))
		}
	})
}
