package invoice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/invoice"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
)

var dbSeq int64

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, evt.Type)
	return nil
}

type fixture struct {
	svc       *Service
	orderRepo order.Repository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:invoice_app_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := mysql.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		orderRepo: mysql.NewOrderRepository(db),
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(
		mysql.NewInvoiceRepository(db),
		f.orderRepo,
		mysql.NewTxManager(db),
		nil,
		f.publisher,
		Config{DefaultCurrency: "COP", AllowedCurrencies: []string{"COP", "USD"}},
		zap.NewNop(),
	)
	return f
}

// placeOrder 直接写入一张订单:2×10.00 + 1×5.00
func (f *fixture) placeOrder(t *testing.T, userID uint) *order.Order {
	t.Helper()
	items := []order.OrderItem{
		{BookID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{BookID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
	}
	o, err := order.NewOrder(order.GenerateOrderNo(), userID, items, decimal.Zero, order.Details{})
	require.NoError(t, err)
	require.NoError(t, f.orderRepo.Create(context.Background(), o))
	return o
}

func TestService_Issue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 7)
	buyer := apporder.Actor{UserID: 7}

	inv, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID, FiscalData: "NIT 900.123.456-7"})
	require.NoError(t, err)

	t.Run("金额与明细", func(t *testing.T) {
		assert.Equal(t, invoice.StatusIssued, inv.Status)
		assert.Equal(t, invoice.CurrencyCOP, inv.Currency)
		assert.Equal(t, "25.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "4.75", inv.Tax.StringFixed(2))
		assert.Equal(t, "29.75", inv.Total.StringFixed(2))
		require.Len(t, inv.Items, 2)
		assert.Equal(t, "3.8000", inv.Items[0].LineTax.StringFixed(4))
	})

	t.Run("订单记录发票号", func(t *testing.T) {
		saved, err := f.orderRepo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.InvoiceNo, saved.InvoiceNumber)
	})

	t.Run("重复开票返回同一张发票", func(t *testing.T) {
		again, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID, Currency: "USD"})
		require.NoError(t, err)
		assert.Equal(t, inv.ID, again.ID)
		assert.Equal(t, invoice.CurrencyCOP, again.Currency)
		assert.Equal(t, []string{event.InvoiceIssued}, f.publisher.types)
	})

	t.Run("他人不能开票和查看", func(t *testing.T) {
		_, err := f.svc.Issue(ctx, apporder.Actor{UserID: 8}, IssueCommand{OrderID: o.ID})
		assert.ErrorIs(t, err, invoice.ErrForbidden)

		_, err = f.svc.Get(ctx, apporder.Actor{UserID: 8}, inv.ID)
		assert.ErrorIs(t, err, invoice.ErrForbidden)

		got, err := f.svc.GetByOrder(ctx, apporder.Actor{UserID: 8, IsAdmin: true}, o.ID)
		require.NoError(t, err)
		assert.Equal(t, inv.InvoiceNo, got.InvoiceNo)
	})
}

func TestService_IssueGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := apporder.Actor{UserID: 7}

	t.Run("币种不在允许列表", func(t *testing.T) {
		o := f.placeOrder(t, 7)
		_, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID, Currency: "EUR"})
		assert.ErrorIs(t, err, invoice.ErrInvalidCurrency)

		_, err = f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID, Currency: "GBP"})
		assert.ErrorIs(t, err, invoice.ErrInvalidCurrency)

		inv, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID, Currency: "usd"})
		require.NoError(t, err)
		assert.Equal(t, invoice.CurrencyUSD, inv.Currency)
	})

	t.Run("已取消的订单", func(t *testing.T) {
		o := f.placeOrder(t, 7)
		require.NoError(t, o.Cancel())
		require.NoError(t, f.orderRepo.Update(ctx, o))

		_, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID})
		assert.ErrorIs(t, err, ErrOrderCancelled)
	})

	t.Run("取消前已开票的订单仍返回原发票", func(t *testing.T) {
		o := f.placeOrder(t, 7)
		first, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID})
		require.NoError(t, err)

		reloaded, err := f.orderRepo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.NoError(t, reloaded.Cancel())
		require.NoError(t, f.orderRepo.Update(ctx, reloaded))

		again, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: 9999})
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestService_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t, 7)
	inv, err := f.svc.Issue(ctx, apporder.Actor{UserID: 7}, IssueCommand{OrderID: o.ID})
	require.NoError(t, err)

	paid, err := f.svc.Pay(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = f.svc.Pay(ctx, inv.ID)
	assert.ErrorIs(t, err, invoice.ErrInvalidTransition)

	voided, err := f.svc.Void(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusVoided, voided.Status)

	_, err = f.svc.Void(ctx, inv.ID)
	assert.ErrorIs(t, err, invoice.ErrInvalidTransition)

	t.Run("作废不影响订单", func(t *testing.T) {
		saved, err := f.orderRepo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusPending, saved.Status)
	})

	assert.Equal(t, []string{event.InvoiceIssued, event.InvoiceVoided}, f.publisher.types)

	list, total, err := f.svc.List(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestService_UpdateDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := apporder.Actor{UserID: 7}

	t.Run("开票时指定账单地址和备注", func(t *testing.T) {
		o := f.placeOrder(t, 7)
		inv, err := f.svc.Issue(ctx, buyer, IssueCommand{
			OrderID:        o.ID,
			BillingAddress: " Carrera 7 #32-16 ",
			Notes:          "季度报销",
		})
		require.NoError(t, err)
		assert.Equal(t, "Carrera 7 #32-16", inv.BillingAddress)

		saved, err := f.svc.Get(ctx, buyer, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "Carrera 7 #32-16", saved.BillingAddress)
		assert.Equal(t, "季度报销", saved.Notes)
	})

	o := f.placeOrder(t, 7)
	inv, err := f.svc.Issue(ctx, buyer, IssueCommand{OrderID: o.ID})
	require.NoError(t, err)

	t.Run("所属用户修改后持久化", func(t *testing.T) {
		addr, notes := "Calle 80 #11-42", "寄往财务部"
		updated, err := f.svc.UpdateDetails(ctx, buyer, inv.ID, invoice.DetailsUpdate{
			BillingAddress: &addr,
			Notes:          &notes,
		})
		require.NoError(t, err)
		assert.Equal(t, addr, updated.BillingAddress)

		saved, err := f.svc.Get(ctx, buyer, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, addr, saved.BillingAddress)
		assert.Equal(t, notes, saved.Notes)
		assert.True(t, inv.Total.Equal(saved.Total))
	})

	t.Run("其他用户无权修改", func(t *testing.T) {
		notes := "x"
		_, err := f.svc.UpdateDetails(ctx, apporder.Actor{UserID: 8}, inv.ID, invoice.DetailsUpdate{Notes: &notes})
		assert.ErrorIs(t, err, invoice.ErrForbidden)
	})

	t.Run("管理员可以修改", func(t *testing.T) {
		notes := "管理员补充"
		updated, err := f.svc.UpdateDetails(ctx, apporder.Actor{UserID: 1, IsAdmin: true}, inv.ID, invoice.DetailsUpdate{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, notes, updated.Notes)
	})

	t.Run("已作废不能修改", func(t *testing.T) {
		_, err := f.svc.Void(ctx, inv.ID)
		require.NoError(t, err)

		notes := "作废后"
		_, err = f.svc.UpdateDetails(ctx, buyer, inv.ID, invoice.DetailsUpdate{Notes: &notes})
		assert.ErrorIs(t, err, invoice.ErrInvalidTransition)

		saved, err := f.svc.Get(ctx, buyer, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "管理员补充", saved.Notes)
	})

	t.Run("发票不存在", func(t *testing.T) {
		notes := "x"
		_, err := f.svc.UpdateDetails(ctx, buyer, 9999, invoice.DetailsUpdate{Notes: &notes})
		assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
	})
}
