package inventory

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

	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
)

var dbSeq int64

// recordingPublisher 记录发布的事件
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

type fixture struct {
	svc       *Service
	bookRepo  book.Repository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_app_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := mysql.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	invRepo := mysql.NewInventoryRepository(db)
	logRepo := mysql.NewInventoryLogRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	publisher := &recordingPublisher{}
	log := zap.NewNop()

	ledger := NewLedger(invRepo, logRepo, bookRepo, publisher, log)
	svc := NewService(ledger, invRepo, logRepo, bookRepo, mysql.NewTxManager(db), 5, log)
	return &fixture{svc: svc, bookRepo: bookRepo, publisher: publisher}
}

func (f *fixture) addBook(t *testing.T, isbn string, stock int) *book.Book {
	t.Helper()
	b := &book.Book{
		ISBN:       isbn,
		Title:      "Book " + isbn,
		Authors:    []string{"Author"},
		Categories: []string{"Fiction"},
		Year:       2020,
		Price:      decimal.RequireFromString("10.00"),
		Stock:      stock,
		Active:     true,
	}
	require.NoError(t, f.bookRepo.Create(context.Background(), b))
	return b
}
