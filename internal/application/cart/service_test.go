package cart

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
)

var dbSeq int64

type fixture struct {
	svc      *Service
	bookRepo book.Repository
	invRepo  inventory.Repository
	userID   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_app_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := mysql.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	userRepo := mysql.NewUserRepository(db)
	u := user.NewUser("buyer@example.com", "hash", "buyer", 30)
	require.NoError(t, userRepo.Create(context.Background(), u))

	f := &fixture{
		bookRepo: mysql.NewBookRepository(db),
		invRepo:  mysql.NewInventoryRepository(db),
		userID:   u.ID,
	}
	f.svc = NewService(mysql.NewCartRepository(db), f.bookRepo, f.invRepo, userRepo, mysql.NewTxManager(db), zap.NewNop())
	return f
}

func (f *fixture) addBook(t *testing.T, isbn, price string, available int, active bool) *book.Book {
	t.Helper()
	ctx := context.Background()
	b := &book.Book{
		ISBN:       isbn,
		Title:      "Book " + isbn,
		Authors:    []string{"Author"},
		Categories: []string{"Fiction"},
		Year:       2020,
		Price:      decimal.RequireFromString(price),
		Stock:      available,
		Active:     active,
	}
	require.NoError(t, f.bookRepo.Create(ctx, b))

	inv, err := inventory.NewInventory(b.ID, available, 1)
	require.NoError(t, err)
	require.NoError(t, f.invRepo.Create(ctx, inv))
	return b
}

func TestService_AddItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000101", "10.00", 5, true)

	c, err := f.svc.AddItem(ctx, f.userID, a.ID, 1)
	require.NoError(t, err)
	c, err = f.svc.AddItem(ctx, f.userID, a.ID, 1)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, "20.00", c.Subtotal.StringFixed(2))
	assert.Equal(t, "3.80", c.Tax.StringFixed(2))
	assert.Equal(t, "23.80", c.Total.StringFixed(2))

	t.Run("图书调价不影响已加入的单价", func(t *testing.T) {
		a.Price = decimal.RequireFromString("99.00")
		require.NoError(t, f.bookRepo.Update(ctx, a))

		got, err := f.svc.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("合并后超出可用数量", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, f.userID, a.ID, 4)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

		got, err := f.svc.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("已下架图书", func(t *testing.T) {
		off := f.addBook(t, "9780000000102", "5.00", 5, false)
		_, err := f.svc.AddItem(ctx, f.userID, off.ID, 1)
		assert.ErrorIs(t, err, book.ErrBookInactive)
	})

	t.Run("数量非法", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, f.userID, a.ID, 0)
		assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, 9999, a.ID, 1)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestService_GetOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrCreate(ctx, f.userID)
	require.NoError(t, err)
	again, err := f.svc.GetOrCreate(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.Discount.IsZero())

	t.Run("放弃后创建新购物车", func(t *testing.T) {
		abandoned, err := f.svc.Abandon(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, cart.StatusAbandoned, abandoned.Status)

		_, err = f.svc.Get(ctx, f.userID)
		assert.ErrorIs(t, err, cart.ErrCartNotFound)

		fresh, err := f.svc.GetOrCreate(ctx, f.userID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, fresh.ID)
	})
}

func TestService_RemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addBook(t, "9780000000103", "12.50", 10, true)
	b := f.addBook(t, "9780000000104", "7.50", 10, true)

	_, err := f.svc.AddItem(ctx, f.userID, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.userID, b.ID, 1)
	require.NoError(t, err)

	c, err := f.svc.RemoveItem(ctx, f.userID, a.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "7.50", c.Subtotal.StringFixed(2))

	_, err = f.svc.RemoveItem(ctx, f.userID, a.ID)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}
