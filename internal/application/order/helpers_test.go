package order

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/cart"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/inventory"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
)

var dbSeq int64

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// mapCache 内存版订单缓存
type mapCache struct {
	mu   sync.Mutex
	data map[uint]*order.Order
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[uint]*order.Order)}
}

func (c *mapCache) Get(_ context.Context, id uint) (*order.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.data[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	return o, nil
}

func (c *mapCache) Set(_ context.Context, o *order.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[o.ID] = o
	return nil
}

func (c *mapCache) Delete(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	return nil
}

func (c *mapCache) has(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[id]
	return ok
}

type fixture struct {
	place  *PlaceOrderUseCase
	cancel *CancelOrderUseCase
	manage *ManageOrderUseCase
	query  *QueryOrderUseCase

	orderRepo order.Repository
	cartRepo  cart.Repository
	bookRepo  book.Repository
	invRepo   inventory.Repository
	publisher *recordingPublisher
	cache     *mapCache

	buyer uint
	other uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:order_app_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := mysql.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	ctx := context.Background()
	userRepo := mysql.NewUserRepository(db)
	buyer := user.NewUser("buyer@example.com", "hash", "buyer", 30)
	require.NoError(t, userRepo.Create(ctx, buyer))
	other := user.NewUser("other@example.com", "hash", "other", 30)
	require.NoError(t, userRepo.Create(ctx, other))

	f := &fixture{
		orderRepo: mysql.NewOrderRepository(db),
		cartRepo:  mysql.NewCartRepository(db),
		bookRepo:  mysql.NewBookRepository(db),
		invRepo:   mysql.NewInventoryRepository(db),
		publisher: &recordingPublisher{},
		cache:     newMapCache(),
		buyer:     buyer.ID,
		other:     other.ID,
	}

	log := zap.NewNop()
	txManager := mysql.NewTxManager(db)
	ledger := appinventory.NewLedger(f.invRepo, mysql.NewInventoryLogRepository(db), f.bookRepo, f.publisher, log)

	f.place = NewPlaceOrderUseCase(f.orderRepo, f.cartRepo, f.bookRepo, userRepo, ledger, txManager, f.publisher, log)
	f.cancel = NewCancelOrderUseCase(f.orderRepo, ledger, txManager, f.cache, f.publisher, log)
	f.manage = NewManageOrderUseCase(f.orderRepo, txManager, f.cache, log)
	f.query = NewQueryOrderUseCase(f.orderRepo, f.cache, log)
	return f
}

// addBook 创建图书和库存台账(阈值1)
func (f *fixture) addBook(t *testing.T, isbn, price string, available int) *book.Book {
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
		Active:     true,
	}
	require.NoError(t, f.bookRepo.Create(ctx, b))

	inv, err := inventory.NewInventory(b.ID, available, 1)
	require.NoError(t, err)
	require.NoError(t, f.invRepo.Create(ctx, inv))
	return b
}

// fillCart 用图书当前价格创建ACTIVE购物车
func (f *fixture) fillCart(t *testing.T, userID uint, lines map[*book.Book]int) *cart.Cart {
	t.Helper()
	c := cart.NewCart(userID)
	for b, qty := range lines {
		require.NoError(t, c.AddItem(b.ID, qty, b.Price))
	}
	require.NoError(t, f.cartRepo.Create(context.Background(), c))
	return c
}

func (f *fixture) available(t *testing.T, bookID uint) int {
	t.Helper()
	inv, err := f.invRepo.FindByBookID(context.Background(), bookID)
	require.NoError(t, err)
	return inv.Available
}
