package mysql

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestBookRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	b := &book.Book{
		ISBN:       "9780134190440",
		Title:      "The Go Programming Language",
		Authors:    []string{"Alan Donovan", "Brian Kernighan"},
		Categories: []string{"Programming"},
		Year:       2015,
		Price:      decimal.RequireFromString("39.99"),
		Stock:      3,
		Active:     true,
	}
	require.NoError(t, repo.Create(ctx, b))
	require.NotZero(t, b.ID)

	t.Run("作者列表按顺序读回", func(t *testing.T) {
		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alan Donovan", "Brian Kernighan"}, got.Authors)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("39.99")))
	})

	t.Run("ISBN重复", func(t *testing.T) {
		dup := *b
		dup.ID = 0
		assert.ErrorIs(t, repo.Create(ctx, &dup), book.ErrISBNDuplicate)
	})

	t.Run("库存计数不能扣成负数", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateStock(ctx, b.ID, -4), book.ErrInsufficientStock)
		require.NoError(t, repo.UpdateStock(ctx, b.ID, -3))
		assert.ErrorIs(t, repo.UpdateStock(ctx, 999, 1), book.ErrBookNotFound)
	})

	t.Run("关键词搜索作者", func(t *testing.T) {
		books, total, err := repo.List(ctx, book.ListParams{Page: 1, PageSize: 10, Keyword: "Kernighan"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
	})
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := user.NewUser("a@example.com", "hash", "Ana", 30)
	require.NoError(t, repo.Create(ctx, u))

	other := user.NewUser("b@example.com", "hash", "Bob", 30)
	require.NoError(t, repo.Create(ctx, other))

	other.Email = "a@example.com"
	assert.ErrorIs(t, repo.Update(ctx, other), user.ErrEmailDuplicate)

	_, err := repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestInventoryRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	logs := NewInventoryLogRepository(db)
	tx := NewTxManager(db)
	ctx := context.Background()

	inv, err := inventory.NewInventory(1, 3, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	t.Run("重复建档", func(t *testing.T) {
		again, _ := inventory.NewInventory(1, 1, 5)
		assert.ErrorIs(t, repo.Create(ctx, again), inventory.ErrInventoryExists)
	})

	t.Run("事务内加锁修改并写日志", func(t *testing.T) {
		err := tx.Transaction(ctx, func(ctx context.Context) error {
			locked, err := repo.LockByBookID(ctx, 1)
			if err != nil {
				return err
			}
			before := locked.Snapshot()
			if err := locked.Reserve(3); err != nil {
				return err
			}
			if err := repo.Save(ctx, locked); err != nil {
				return err
			}
			return logs.Append(ctx, inventory.NewChangeLog(inventory.ChangeTypeReserve, 3, before, locked).WithOrder(7))
		})
		require.NoError(t, err)

		got, err := repo.FindByBookID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Available)
		assert.Equal(t, 3, got.Reserved)
		assert.Equal(t, inventory.StateOutOfStock, got.State)

		entries, err := logs.ListByBookID(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint(7), entries[0].OrderID)
		assert.Equal(t, 3, entries[0].BeforeAvailable)
	})

	t.Run("低库存查询", func(t *testing.T) {
		healthy, _ := inventory.NewInventory(2, 50, 5)
		require.NoError(t, repo.Create(ctx, healthy))

		low, err := repo.ListLowStock(ctx)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, uint(1), low[0].BookID)
	})

	t.Run("事务回滚后计数不变", func(t *testing.T) {
		err := tx.Transaction(ctx, func(ctx context.Context) error {
			locked, err := repo.LockByBookID(ctx, 2)
			if err != nil {
				return err
			}
			_ = locked.Reserve(10)
			if err := repo.Save(ctx, locked); err != nil {
				return err
			}
			return apperrors.ErrInternal
		})
		require.Error(t, err)

		got, err := repo.FindByBookID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 50, got.Available)
	})
}

func TestCartRepository(t *testing.T) {
	repo := NewCartRepository(newTestDB(t))
	ctx := context.Background()

	c := cart.NewCart(9)
	require.NoError(t, c.AddItem(1, 2, decimal.RequireFromString("10.00")))
	require.NoError(t, repo.Create(ctx, c))

	t.Run("每个用户只能有一个ACTIVE购物车", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(ctx, cart.NewCart(9)), apperrors.ErrDuplicateEntry)
	})

	t.Run("保存时整体替换明细", func(t *testing.T) {
		got, err := repo.FindActiveByUserID(ctx, 9)
		require.NoError(t, err)
		require.NoError(t, got.AddItem(2, 1, decimal.RequireFromString("5.00")))
		require.NoError(t, got.RemoveItem(1))
		require.NoError(t, repo.Save(ctx, got))

		reloaded, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, uint(2), reloaded.Items[0].BookID)
		assert.Equal(t, "5.95", reloaded.Total.StringFixed(2))
	})

	t.Run("转换后可以再建新购物车", func(t *testing.T) {
		got, err := repo.FindActiveByUserID(ctx, 9)
		require.NoError(t, err)
		require.NoError(t, got.MarkConverted())
		require.NoError(t, repo.Save(ctx, got))

		_, err = repo.FindActiveByUserID(ctx, 9)
		assert.ErrorIs(t, err, cart.ErrCartNotFound)
		assert.NoError(t, repo.Create(ctx, cart.NewCart(9)))
	})
}

func TestOrderRepository(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))
	ctx := context.Background()

	o, err := order.NewOrder(order.GenerateOrderNo(), 4, []order.OrderItem{
		{BookID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
	}, decimal.Zero, order.Details{ShippingAddress: "Calle 10"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "23.80", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.OrderStatusPending, got.Status)

	got.Status = order.OrderStatusShipped
	got.TrackingNumber = "TRK-1"
	require.NoError(t, repo.Update(ctx, got))

	byNo, err := repo.FindByOrderNo(ctx, o.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", byNo.TrackingNumber)

	list, total, err := repo.ListByUserID(ctx, 4, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, o.ID))
	_, err = repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
