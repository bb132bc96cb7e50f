package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	appbook "github.com/xiebiao/bookstore-commerce/internal/application/book"
	appcart "github.com/xiebiao/bookstore-commerce/internal/application/cart"
	appinventory "github.com/xiebiao/bookstore-commerce/internal/application/inventory"
	appinvoice "github.com/xiebiao/bookstore-commerce/internal/application/invoice"
	apporder "github.com/xiebiao/bookstore-commerce/internal/application/order"
	appuser "github.com/xiebiao/bookstore-commerce/internal/application/user"
	"github.com/xiebiao/bookstore-commerce/internal/domain/book"
	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/internal/domain/user"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-commerce/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-commerce/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
	"github.com/xiebiao/bookstore-commerce/pkg/jwt"
)

var dbSeq int64

// memorySessions 内存版会话和黑名单
type memorySessions struct {
	mu        sync.Mutex
	sessions  map[uint]redis.Session
	blacklist map[string]bool
}

func (m *memorySessions) SaveSession(_ context.Context, sess redis.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.UserID] = sess
	return nil
}

func (m *memorySessions) DeleteSession(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func (m *memorySessions) AddToBlacklist(_ context.Context, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklist[token] = true
	return nil
}

func (m *memorySessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blacklist[token], nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	jwt    *jwt.Manager
}

// newServer 用SQLite内存库组装完整的依赖链
func newServer(t *testing.T) *server {
	t.Helper()

	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := mysql.OpenSQLite(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	var pub event.Publisher = event.NopPublisher{}
	cache := apporder.NopCache{}
	sessions := &memorySessions{sessions: map[uint]redis.Session{}, blacklist: map[string]bool{}}
	jwtManager := jwt.NewManager("router-test-secret", time.Hour, 24*time.Hour)

	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	invRepo := mysql.NewInventoryRepository(db)
	logRepo := mysql.NewInventoryLogRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	invoiceRepo := mysql.NewInvoiceRepository(db)
	txManager := mysql.NewTxManager(db)

	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)
	ledger := appinventory.NewLedger(invRepo, logRepo, bookRepo, pub, log)

	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService, log),
			appuser.NewLoginUseCase(userService, jwtManager, sessions, time.Hour, log),
			appuser.NewLogoutUseCase(sessions, time.Hour),
			appuser.NewProfileUseCase(userService),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(bookService, log),
			appbook.NewListBooksUseCase(bookService),
		),
		Cart: handler.NewCartHandler(appcart.NewService(cartRepo, bookRepo, invRepo, userRepo, txManager, log)),
		Order: handler.NewOrderHandler(
			apporder.NewPlaceOrderUseCase(orderRepo, cartRepo, bookRepo, userRepo, ledger, txManager, pub, log),
			apporder.NewCancelOrderUseCase(orderRepo, ledger, txManager, cache, pub, log),
			apporder.NewManageOrderUseCase(orderRepo, txManager, cache, log),
			apporder.NewQueryOrderUseCase(orderRepo, cache, log),
		),
		Inventory: handler.NewInventoryHandler(
			appinventory.NewService(ledger, invRepo, logRepo, bookRepo, txManager, 5, log),
		),
		Invoice: handler.NewInvoiceHandler(appinvoice.NewService(
			invoiceRepo, orderRepo, txManager, cache, pub,
			appinvoice.Config{DefaultCurrency: "COP", AllowedCurrencies: []string{"COP", "USD"}},
			log,
		)),
	}

	engine := New(h, middleware.NewAuthMiddleware(jwtManager, sessions), log, Options{
		Mode:           gin.TestMode,
		ServiceName:    "bookstore-test",
		MetricsEnabled: true,
	})
	return &server{t: t, engine: engine, jwt: jwtManager}
}

// do 发请求并解析统一响应
func (s *server) do(method, path, token string, body interface{}) envelope {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// register 注册并登录,返回Access Token和用户ID
func (s *server) register(email string) (string, uint) {
	s.t.Helper()
	env := s.do(http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": email, "password": "secret123", "nickname": "reader",
		"age": 30, "accept_terms": true,
	})
	require.Equal(s.t, 0, env.Code, env.Message)

	env = s.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(s.t, 0, env.Code, env.Message)
	var login appuser.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &login))
	return login.AccessToken, login.User.ID
}

// adminToken 给已注册用户签发管理员Token
func (s *server) adminToken(userID uint) string {
	s.t.Helper()
	pair, err := s.jwt.GenerateToken(jwt.Identity{UserID: userID, Email: "admin@example.com", Nickname: "admin", Role: string(user.RoleAdmin)})
	require.NoError(s.t, err)
	return pair.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	require.Equal(t, 0, env.Code, env.Message)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestPing(t *testing.T) {
	s := newServer(t)
	env := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, 0, env.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAuthGuards(t *testing.T) {
	s := newServer(t)
	token, _ := s.register("buyer@example.com")

	t.Run("未登录", func(t *testing.T) {
		env := s.do(http.MethodGet, "/api/v1/cart", "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)
	})

	t.Run("Token格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), fmt.Sprint(apperrors.ErrCodeInvalidToken))
	})

	t.Run("普通用户不能上架图书", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/books", token, gin.H{"isbn": "9780307474728"})
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	})

	t.Run("无效的路径参数", func(t *testing.T) {
		env := s.do(http.MethodGet, "/api/v1/orders/abc", token, nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	t.Run("个人资料", func(t *testing.T) {
		info := decode[appuser.UserInfo](t, s.do(http.MethodGet, "/api/v1/users/me", token, nil))
		assert.Equal(t, "buyer@example.com", info.Email)
	})

	t.Run("登出后Token失效", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/users/logout", token, nil)
		require.Equal(t, 0, env.Code)

		env = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, env.Code)
	})
}

func TestOrderPipeline(t *testing.T) {
	s := newServer(t)
	buyer, _ := s.register("buyer@example.com")
	_, adminID := s.register("admin@example.com")
	admin := s.adminToken(adminID)

	// 1. 管理员上架图书并建立台账
	published := decode[appbook.BookDTO](t, s.do(http.MethodPost, "/api/v1/books", admin, gin.H{
		"isbn": "9780307474728", "title": "Cien años de soledad",
		"authors": "Gabriel García Márquez", "categories": []string{"Novela"},
		"year": 1967, "price": "10.00", "stock": 5,
	}))
	assert.Equal(t, []string{"Gabriel García Márquez"}, published.Authors)

	bookPath := fmt.Sprintf("/api/v1/inventory/%d", published.ID)
	env := s.do(http.MethodPost, "/api/v1/inventory", admin, gin.H{"book_id": published.ID, "available": 5, "threshold": 1})
	require.Equal(t, 0, env.Code, env.Message)

	// 2. 顾客加购并从购物车下单
	env = s.do(http.MethodPost, "/api/v1/cart/items", buyer, gin.H{"book_id": published.ID, "quantity": 2})
	require.Equal(t, 0, env.Code, env.Message)

	placed := decode[struct {
		ID       uint   `json:"id"`
		Status   string `json:"status"`
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}](t, s.do(http.MethodPost, "/api/v1/orders/from-cart", buyer, gin.H{
		"payment_method": "CARD", "shipping_address": "Calle 10 #5-20",
	}))
	assert.Equal(t, "PENDING", placed.Status)
	assert.Equal(t, "20.00", placed.Subtotal)
	assert.Equal(t, "3.80", placed.Tax)
	assert.Equal(t, "23.80", placed.Total)

	t.Run("库存已扣减", func(t *testing.T) {
		inv := decode[struct {
			Available int `json:"available"`
		}](t, s.do(http.MethodGet, bookPath, buyer, nil))
		assert.Equal(t, 3, inv.Available)
	})

	t.Run("购物车已转换,再次下单失败", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/orders/from-cart", buyer, gin.H{"payment_method": "CARD"})
		assert.NotEqual(t, 0, env.Code)
	})

	t.Run("库存不足整单失败", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/orders", buyer, gin.H{
			"items": []gin.H{{"book_id": published.ID, "quantity": 4}},
		})
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, env.Code)
	})

	orderPath := fmt.Sprintf("/api/v1/orders/%d", placed.ID)

	t.Run("开具发票", func(t *testing.T) {
		inv := decode[struct {
			ID       uint   `json:"id"`
			Status   string `json:"status"`
			Currency string `json:"currency"`
			Total    string `json:"total"`
		}](t, s.do(http.MethodPost, "/api/v1/invoices", buyer, gin.H{"order_id": placed.ID}))
		assert.Equal(t, "EMITIDA", inv.Status)
		assert.Equal(t, "COP", inv.Currency)
		assert.Equal(t, "23.80", inv.Total)

		env := s.do(http.MethodGet, orderPath+"/invoice", buyer, nil)
		assert.Equal(t, 0, env.Code)

		updated := decode[struct {
			BillingAddress string `json:"billing_address"`
			Notes          string `json:"notes"`
			Total          string `json:"total"`
		}](t, s.do(http.MethodPatch, fmt.Sprintf("/api/v1/invoices/%d", inv.ID), buyer, gin.H{
			"billing_address": "Carrera 7 #32-16",
			"notes":           "季度报销",
		}))
		assert.Equal(t, "Carrera 7 #32-16", updated.BillingAddress)
		assert.Equal(t, "季度报销", updated.Notes)
		assert.Equal(t, "23.80", updated.Total)
	})

	t.Run("其他用户看不到订单", func(t *testing.T) {
		other, _ := s.register("other@example.com")
		env := s.do(http.MethodGet, orderPath, other, nil)
		assert.NotEqual(t, 0, env.Code)
	})

	t.Run("管理员取消并回补库存", func(t *testing.T) {
		env := s.do(http.MethodPost, orderPath+"/cancel-and-restock", buyer, nil)
		assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

		cancelled := decode[struct {
			Status string `json:"status"`
		}](t, s.do(http.MethodPost, orderPath+"/cancel-and-restock", admin, nil))
		assert.Equal(t, "CANCELLED", cancelled.Status)

		inv := decode[struct {
			Available int `json:"available"`
		}](t, s.do(http.MethodGet, bookPath, buyer, nil))
		assert.Equal(t, 5, inv.Available)
	})

	t.Run("库存流水", func(t *testing.T) {
		logs := decode[[]struct {
			Type   string `json:"type"`
			Remark string `json:"remark"`
		}](t, s.do(http.MethodGet, bookPath+"/logs", admin, nil))
		require.NotEmpty(t, logs)
		assert.True(t, strings.Contains(logs[0].Remark, "回补"), logs[0].Remark)
	})
}

func TestInventoryEndpoints(t *testing.T) {
	s := newServer(t)
	_, adminID := s.register("admin@example.com")
	admin := s.adminToken(adminID)

	published := decode[appbook.BookDTO](t, s.do(http.MethodPost, "/api/v1/books", admin, gin.H{
		"isbn": "9780307474728", "title": "Cien años de soledad",
		"authors": []string{"Gabriel García Márquez"}, "categories": "Novela, Clásicos",
		"year": 1967, "price": "45.50",
	}))
	assert.Equal(t, []string{"Novela", "Clásicos"}, published.Categories)
	base := fmt.Sprintf("/api/v1/inventory/%d", published.ID)

	env := s.do(http.MethodPost, "/api/v1/inventory", admin, gin.H{"book_id": published.ID, "available": 4})
	require.Equal(t, 0, env.Code, env.Message)

	type inventoryView struct {
		Available int  `json:"available"`
		Reserved  int  `json:"reserved"`
		Threshold int  `json:"threshold"`
		Released  *int `json:"released"`
	}

	t.Run("默认阈值", func(t *testing.T) {
		inv := decode[inventoryView](t, s.do(http.MethodGet, base, admin, nil))
		assert.Equal(t, 5, inv.Threshold)
	})

	t.Run("重复建档", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/inventory", admin, gin.H{"book_id": published.ID, "available": 1})
		assert.NotEqual(t, 0, env.Code)
	})

	t.Run("预留和释放", func(t *testing.T) {
		inv := decode[inventoryView](t, s.do(http.MethodPost, base+"/reserve", admin, gin.H{"quantity": 3}))
		assert.Equal(t, 1, inv.Available)
		assert.Equal(t, 3, inv.Reserved)

		env := s.do(http.MethodPost, base+"/reserve", admin, gin.H{"quantity": 2})
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, env.Code)

		inv = decode[inventoryView](t, s.do(http.MethodPost, base+"/release", admin, gin.H{"quantity": 10}))
		require.NotNil(t, inv.Released)
		assert.Equal(t, 3, *inv.Released)
		assert.Equal(t, 4, inv.Available)
		assert.Equal(t, 0, inv.Reserved)
	})

	t.Run("确认售出和补货", func(t *testing.T) {
		inv := decode[inventoryView](t, s.do(http.MethodPost, base+"/confirm", admin, gin.H{"quantity": 4}))
		assert.Equal(t, 0, inv.Available)

		lowStock := decode[[]inventoryView](t, s.do(http.MethodGet, "/api/v1/inventory/low-stock", admin, nil))
		assert.Len(t, lowStock, 1)

		inv = decode[inventoryView](t, s.do(http.MethodPost, base+"/restock", admin, gin.H{"quantity": 10, "lot": "L-2024-10"}))
		assert.Equal(t, 10, inv.Available)
	})

	t.Run("修改阈值", func(t *testing.T) {
		inv := decode[inventoryView](t, s.do(http.MethodPatch, base, admin, gin.H{"threshold": 2}))
		assert.Equal(t, 2, inv.Threshold)
	})

	t.Run("删除台账", func(t *testing.T) {
		env := s.do(http.MethodDelete, base, admin, nil)
		require.Equal(t, 0, env.Code, env.Message)

		env = s.do(http.MethodGet, base, admin, nil)
		assert.NotEqual(t, 0, env.Code)
	})
}
