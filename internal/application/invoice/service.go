// Package invoice 发票用例
package invoice

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/invoice"
	"github.com/xiebiao/bookstore-commerce/internal/domain/order"
	"github.com/xiebiao/bookstore-commerce/internal/domain/pricing"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
	"github.com/xiebiao/bookstore-commerce/pkg/metrics"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

const tracerName = "invoice"

// ErrOrderCancelled 已取消的订单不能开票
var ErrOrderCancelled = apperrors.New(apperrors.ErrCodeInvalidTransition, "订单已取消,不能开票")

// Service 发票服务
//
// 教学要点:
// 1. 开票是幂等的:同一订单重复开票返回已有的发票
// 2. 先锁订单再查发票,两个并发请求只有一个能创建
// 3. 发票状态与订单状态互不影响(作废发票不会取消订单)
type Service struct {
	invoiceRepo     invoice.Repository
	orderRepo       order.Repository
	txManager       *mysql.TxManager
	orderCache      apporder.Cache
	publisher       event.Publisher
	defaultCurrency invoice.Currency
	allowed         map[invoice.Currency]bool
	log             *zap.Logger
}

// Config 开票配置
type Config struct {
	DefaultCurrency   string
	AllowedCurrencies []string
}

// NewService 创建发票服务
// 配置中的币种不合法时回退到COP
func NewService(
	invoiceRepo invoice.Repository,
	orderRepo order.Repository,
	txManager *mysql.TxManager,
	orderCache apporder.Cache,
	publisher event.Publisher,
	cfg Config,
	log *zap.Logger,
) *Service {
	metrics.InitMetrics()
	if orderCache == nil {
		orderCache = apporder.NopCache{}
	}

	allowed := make(map[invoice.Currency]bool)
	for _, c := range cfg.AllowedCurrencies {
		if cur, err := invoice.ParseCurrency(c); err == nil {
			allowed[cur] = true
		}
	}
	def, err := invoice.ParseCurrency(cfg.DefaultCurrency)
	if err != nil {
		def = invoice.CurrencyCOP
	}
	if len(allowed) == 0 {
		allowed[def] = true
	}

	return &Service{
		invoiceRepo:     invoiceRepo,
		orderRepo:       orderRepo,
		txManager:       txManager,
		orderCache:      orderCache,
		publisher:       publisher,
		defaultCurrency: def,
		allowed:         allowed,
		log:             log,
	}
}

// IssueCommand 开票参数
type IssueCommand struct {
	OrderID        uint
	Currency       string // 为空时使用默认币种
	FiscalData     string
	BillingAddress string // 为空时使用订单的收货地址
	Notes          string
}

// Issue 为订单开具发票
//
// 流程:
//  1. 锁定订单(串行化同一订单的并发开票)
//  2. 已有发票直接返回
//  3. 校验权限、订单状态、币种
//  4. 生成发票 + 订单记录发票号,同一事务
func (s *Service) Issue(ctx context.Context, actor apporder.Actor, cmd IssueCommand) (*invoice.Invoice, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "invoice.issue")
	defer span.End()

	var (
		issued  *invoice.Invoice
		created bool
	)
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orderRepo.LockByID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o) {
			return invoice.ErrForbidden
		}

		existing, err := s.invoiceRepo.FindByOrderID(txCtx, o.ID)
		if err == nil {
			issued = existing
			return nil
		}
		if !errors.Is(err, invoice.ErrInvoiceNotFound) {
			return err
		}

		if o.Status == order.OrderStatusCancelled {
			return ErrOrderCancelled
		}
		currency, err := s.currency(cmd.Currency)
		if err != nil {
			return err
		}

		inv, err := invoice.FromOrder(o, currency, cmd.FiscalData)
		if err != nil {
			return err
		}
		if addr := strings.TrimSpace(cmd.BillingAddress); addr != "" {
			inv.BillingAddress = addr
		}
		inv.Notes = strings.TrimSpace(cmd.Notes)
		if err := s.invoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}

		o.AttachInvoice(inv.InvoiceNo)
		if err := s.orderRepo.Update(txCtx, o); err != nil {
			return err
		}
		issued, created = inv, true
		return nil
	})
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}
	if !created {
		return issued, nil
	}

	metrics.IncCounterVec(metrics.InvoicesIssuedTotal, map[string]string{"currency": string(issued.Currency)})
	if err := s.orderCache.Delete(ctx, issued.OrderID); err != nil {
		s.log.Warn("删除订单缓存失败", zap.Uint("order_id", issued.OrderID), zap.Error(err))
	}
	s.log.Info("发票已开具",
		zap.String("invoice_no", issued.InvoiceNo),
		zap.Uint("order_id", issued.OrderID),
		zap.String("total", pricing.Format(issued.Total)))
	s.publish(ctx, event.InvoiceIssued, issued)
	return issued, nil
}

// Pay 标记已付款(管理员)
func (s *Service) Pay(ctx context.Context, invoiceID uint) (*invoice.Invoice, error) {
	return s.transition(ctx, invoiceID, (*invoice.Invoice).MarkPaid)
}

// Void 作废发票(管理员),订单状态不变
func (s *Service) Void(ctx context.Context, invoiceID uint) (*invoice.Invoice, error) {
	inv, err := s.transition(ctx, invoiceID, (*invoice.Invoice).Void)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, event.InvoiceVoided, inv)
	return inv, nil
}

// UpdateDetails 修改账单地址和备注(发票所属用户或管理员)
func (s *Service) UpdateDetails(ctx context.Context, actor apporder.Actor, invoiceID uint, p invoice.DetailsUpdate) (*invoice.Invoice, error) {
	var updated *invoice.Invoice
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		inv, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if _, err := s.authorize(actor, inv); err != nil {
			return err
		}
		if err := inv.UpdateDetails(p); err != nil {
			return err
		}
		if err := s.invoiceRepo.UpdateDetails(txCtx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("发票信息已修改", zap.Uint("invoice_id", updated.ID))
	return updated, nil
}

// Get 查询发票
func (s *Service) Get(ctx context.Context, actor apporder.Actor, invoiceID uint) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.authorize(actor, inv)
}

// GetByOrder 查询订单的发票
func (s *Service) GetByOrder(ctx context.Context, actor apporder.Actor, orderID uint) (*invoice.Invoice, error) {
	inv, err := s.invoiceRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.authorize(actor, inv)
}

// List 分页查询用户的发票
func (s *Service) List(ctx context.Context, userID uint, page, pageSize int) ([]*invoice.Invoice, int64, error) {
	return s.invoiceRepo.ListByUserID(ctx, userID, page, pageSize)
}

func (s *Service) authorize(actor apporder.Actor, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if !actor.IsAdmin && !inv.IsOwnedBy(actor.UserID) {
		return nil, invoice.ErrForbidden
	}
	return inv, nil
}

func (s *Service) currency(raw string) (invoice.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return s.defaultCurrency, nil
	}
	c, err := invoice.ParseCurrency(raw)
	if err != nil {
		return "", err
	}
	if !s.allowed[c] {
		return "", invoice.ErrInvalidCurrency
	}
	return c, nil
}

func (s *Service) transition(ctx context.Context, invoiceID uint, fn func(*invoice.Invoice) error) (*invoice.Invoice, error) {
	var updated *invoice.Invoice
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		inv, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if err := fn(inv); err != nil {
			return err
		}
		if err := s.invoiceRepo.UpdateStatus(txCtx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("发票状态变更", zap.Uint("invoice_id", updated.ID), zap.String("status", string(updated.Status)))
	return updated, nil
}

// publish 事务提交后发布,失败只记录日志
func (s *Service) publish(ctx context.Context, eventType string, inv *invoice.Invoice) {
	evt := event.New(eventType, event.InvoicePayload{
		InvoiceID: inv.ID,
		OrderID:   inv.OrderID,
		Total:     pricing.Format(inv.Total),
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("发票事件发布失败", zap.Uint("invoice_id", inv.ID), zap.Error(err))
	}
}
