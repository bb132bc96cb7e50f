package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-commerce/pkg/errors"
)

func perform(handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := perform(func(c *gin.Context) { Success(c, gin.H{"id": 1}) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "success", body.Message)
}

func TestError(t *testing.T) {
	t.Run("业务错误返回错误码", func(t *testing.T) {
		_, body := perform(func(c *gin.Context) {
			Error(c, apperrors.Newf(apperrors.ErrCodeInsufficientStock, "《%s》库存不足", "Go"))
		})
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, body.Code)
		assert.Equal(t, "《Go》库存不足", body.Message)
		assert.Nil(t, body.Data)
	})

	t.Run("普通错误隐藏细节", func(t *testing.T) {
		_, body := perform(func(c *gin.Context) { Error(c, errors.New("dial tcp: refused")) })
		assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
		assert.NotContains(t, body.Message, "dial tcp")
	})

	t.Run("绑定失败", func(t *testing.T) {
		_, body := perform(func(c *gin.Context) { BindError(c, errors.New("EOF")) })
		assert.Equal(t, apperrors.ErrCodeBindError, body.Code)
	})
}

func TestNewPageData(t *testing.T) {
	page := NewPageData([]int{1, 2}, 41, 1, 20)
	require.NotNil(t, page)
	assert.Equal(t, 3, page.TotalPages)

	assert.Equal(t, 0, NewPageData(nil, 0, 1, 20).TotalPages)
}
