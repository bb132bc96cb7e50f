package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookstore-commerce/pkg/jwt"
	"github.com/xiebiao/bookstore-commerce/pkg/tracing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return f[token], nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("middleware-secret", time.Hour, 24*time.Hour)
	blacklist := fakeBlacklist{}
	auth := NewAuthMiddleware(manager, blacklist)

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "user_id": GetUserID(c), "email": GetEmail(c), "admin": IsAdmin(c)})
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	customer, err := manager.GenerateToken(jwt.Identity{UserID: 7, Email: "reader@example.com", Role: "customer"})
	require.NoError(t, err)
	admin, err := manager.GenerateToken(jwt.Identity{UserID: 1, Email: "admin@example.com", Role: jwt.RoleAdmin})
	require.NoError(t, err)

	request := func(path, token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req
	}

	t.Run("注入用户信息", func(t *testing.T) {
		w := serve(r, request("/me", customer.AccessToken))
		assert.JSONEq(t, `{"code":0,"user_id":7,"email":"reader@example.com","admin":false}`, w.Body.String())
	})

	t.Run("缺少Token", func(t *testing.T) {
		w := serve(r, request("/me", ""))
		assert.Contains(t, w.Body.String(), `"code":40100`)
	})

	t.Run("伪造Token", func(t *testing.T) {
		w := serve(r, request("/me", "not-a-jwt"))
		assert.Contains(t, w.Body.String(), `"code":40101`)
	})

	t.Run("非管理员访问管理接口", func(t *testing.T) {
		w := serve(r, request("/admin", customer.AccessToken))
		assert.Contains(t, w.Body.String(), `"code":40104`)

		w = serve(r, request("/admin", admin.AccessToken))
		assert.JSONEq(t, `{"code":0}`, w.Body.String())
	})

	t.Run("黑名单Token", func(t *testing.T) {
		blacklist[customer.AccessToken] = true
		w := serve(r, request("/me", customer.AccessToken))
		assert.Contains(t, w.Body.String(), `"code":40102`)
	})

}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	t.Run("生成请求ID", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("沿用上游请求ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := serve(r, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

		entry := logs.All()[logs.Len()-1]
		assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
	})

	t.Run("5xx记录为Error", func(t *testing.T) {
		serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
		entry := logs.All()[logs.Len()-1]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracing.Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var traceID string
	r := gin.New()
	r.Use(Tracing("bookstore-test"))
	r.GET("/orders/:id", func(c *gin.Context) {
		traceID = tracing.ExtractTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.NotEmpty(t, w.Header().Get("traceparent"))
	assert.Len(t, traceID, 32)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /orders/:id", spans[0].Name())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example.com"}))
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("预检请求", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/books", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := serve(r, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("未允许的来源", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
