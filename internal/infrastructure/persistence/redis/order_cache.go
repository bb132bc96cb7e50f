package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
)

// OrderCache 订单详情缓存(Cache-Aside)
//
// 教学要点：
// 1. 查询时先查缓存，未命中再查数据库并回填
// 2. 订单更新、取消、删除时删除缓存(用例层延迟双删)，不做写穿透
// 3. 存JSON字符串而非HASH，一次GET拿到完整订单
// 4. 金额是decimal，JSON里是字符串，不会丢精度
type OrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client, ttl time.Duration) *OrderCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OrderCache{client: client, ttl: ttl}
}

// orderCacheKey 生成订单缓存键,示例:order:detail:123
func orderCacheKey(orderID uint) string {
	return fmt.Sprintf("order:detail:%d", orderID)
}

// Get 获取订单缓存,未命中返回(nil, nil)
func (c *OrderCache) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	val, err := c.client.Get(ctx, orderCacheKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取订单缓存失败: %w", err)
	}

	var o order.Order
	if err := json.Unmarshal(val, &o); err != nil {
		return nil, fmt.Errorf("解析订单缓存失败: %w", err)
	}
	return &o, nil
}

// Set 设置订单缓存
// SetEx是原子操作,不会出现写入成功但没有过期时间的key
func (c *OrderCache) Set(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("序列化订单失败: %w", err)
	}

	if err := c.client.SetEx(ctx, orderCacheKey(o.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("设置订单缓存失败: %w", err)
	}
	return nil
}

// Delete 删除订单缓存
func (c *OrderCache) Delete(ctx context.Context, orderID uint) error {
	if err := c.client.Del(ctx, orderCacheKey(orderID)).Err(); err != nil {
		return fmt.Errorf("删除订单缓存失败: %w", err)
	}
	return nil
}
