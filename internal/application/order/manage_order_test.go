package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
)

func TestManageOrder_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000401", "10.00", 5)
	o, err := f.place.Direct(ctx, DirectRequest{UserID: f.buyer, Items: []DirectItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	tracking := "SF123456"
	shipped := order.OrderStatusShipped
	updated, err := f.manage.Update(ctx, o.ID, order.UpdateParams{Status: &shipped, TrackingNumber: &tracking})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusShipped, updated.Status)
	assert.Equal(t, "SF123456", updated.TrackingNumber)

	t.Run("已发货不能改为取消", func(t *testing.T) {
		cancelled := order.OrderStatusCancelled
		_, err := f.manage.Update(ctx, o.ID, order.UpdateParams{Status: &cancelled})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("其他状态变化放行", func(t *testing.T) {
		pending := order.OrderStatusPending
		_, err := f.manage.Update(ctx, o.ID, order.UpdateParams{Status: &pending})
		assert.NoError(t, err)
	})

	t.Run("非法支付方式", func(t *testing.T) {
		pm := order.PaymentMethod("CASH")
		_, err := f.manage.Update(ctx, o.ID, order.UpdateParams{PaymentMethod: &pm})
		assert.ErrorIs(t, err, order.ErrInvalidPaymentMethod)
	})
}

func TestManageOrder_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000402", "10.00", 5)

	o, err := f.place.Direct(ctx, DirectRequest{UserID: f.buyer, Items: []DirectItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	delivered := order.OrderStatusDelivered
	_, err = f.manage.Update(ctx, o.ID, order.UpdateParams{Status: &delivered})
	require.NoError(t, err)
	assert.ErrorIs(t, f.manage.Delete(ctx, o.ID), order.ErrCannotDelete)

	pending, err := f.place.Direct(ctx, DirectRequest{UserID: f.buyer, Items: []DirectItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)
	require.NoError(t, f.manage.Delete(ctx, pending.ID))

	_, err = f.orderRepo.FindByID(ctx, pending.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, 3, f.available(t, a.ID), "删除不回补库存")
}

func TestQueryOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000403", "10.00", 5)
	o, err := f.place.Direct(ctx, DirectRequest{UserID: f.buyer, Items: []DirectItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	t.Run("未命中回填,再次读取命中", func(t *testing.T) {
		got, err := f.query.Get(ctx, Actor{UserID: f.buyer}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNo, got.OrderNo)
		assert.True(t, f.cache.has(o.ID))

		_, err = f.query.Get(ctx, Actor{UserID: f.buyer}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.cache.hits)
	})

	t.Run("权限校验", func(t *testing.T) {
		_, err := f.query.Get(ctx, Actor{UserID: f.other}, o.ID)
		assert.ErrorIs(t, err, order.ErrForbidden)

		_, err = f.query.Get(ctx, Actor{UserID: f.other, IsAdmin: true}, o.ID)
		assert.NoError(t, err)
	})

	t.Run("取消后缓存失效", func(t *testing.T) {
		_, err := f.cancel.Cancel(ctx, Actor{UserID: f.buyer}, o.ID)
		require.NoError(t, err)
		assert.False(t, f.cache.has(o.ID))

		got, err := f.query.Get(ctx, Actor{UserID: f.buyer}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusCancelled, got.Status)
	})

	t.Run("分页列表", func(t *testing.T) {
		orders, total, err := f.query.List(ctx, f.buyer, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, orders, 1)
	})
}

// 写事务提交前读到的旧订单在第一次删除之后才回填,延迟删除把它清掉
func TestCacheDoubleEviction(t *testing.T) {
	old := evictDelay
	evictDelay = 20 * time.Millisecond
	t.Cleanup(func() { evictDelay = old })

	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000404", "10.00", 5)
	o, err := f.place.Direct(ctx, DirectRequest{UserID: f.buyer, Items: []DirectItem{{BookID: a.ID, Quantity: 1}}})
	require.NoError(t, err)

	stale, err := f.orderRepo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	_, err = f.cancel.Cancel(ctx, Actor{UserID: f.buyer}, o.ID)
	require.NoError(t, err)
	assert.False(t, f.cache.has(o.ID))

	// 并发读请求把取消前的订单写回缓存
	require.NoError(t, f.cache.Set(ctx, stale))
	require.True(t, f.cache.has(o.ID))

	assert.Eventually(t, func() bool { return !f.cache.has(o.ID) }, time.Second, 5*time.Millisecond)

	got, err := f.query.Get(ctx, Actor{UserID: f.buyer}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, got.Status)
}
