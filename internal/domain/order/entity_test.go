package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingOrder(t *testing.T) *Order {
	t.Helper()
	items := []OrderItem{{BookID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}}
	o, err := NewOrder(GenerateOrderNo(), 9, items, decimal.Zero, Details{})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("金额由计价引擎计算", func(t *testing.T) {
		o := newPendingOrder(t)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentCard, o.PaymentMethod)
		assert.Equal(t, "20.00", o.Subtotal.StringFixed(2))
		assert.Equal(t, "3.80", o.Tax.StringFixed(2))
		assert.Equal(t, "23.80", o.Total.StringFixed(2))
		assert.Equal(t, 2, o.ItemCount())
	})

	t.Run("明细是冻结副本", func(t *testing.T) {
		items := []OrderItem{{BookID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("8.00")}}
		o, err := NewOrder("ORD1", 9, items, decimal.Zero, Details{})
		require.NoError(t, err)

		items[0].UnitPrice = decimal.RequireFromString("99.00")
		assert.Equal(t, "8.00", o.Items[0].UnitPrice.StringFixed(2))
	})

	t.Run("非法输入", func(t *testing.T) {
		_, err := NewOrder("ORD1", 9, nil, decimal.Zero, Details{})
		assert.Equal(t, ErrInvalidOrderItems, err)

		_, err = NewOrder("ORD1", 9, []OrderItem{{BookID: 1, Quantity: 0}}, decimal.Zero, Details{})
		assert.Equal(t, ErrInvalidQuantity, err)

		_, err = NewOrder("ORD1", 9, []OrderItem{{BookID: 1, Quantity: 1}}, decimal.Zero, Details{PaymentMethod: "CASH"})
		assert.Equal(t, ErrInvalidPaymentMethod, err)
	})
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		status  OrderStatus
		wantErr bool
	}{
		{"待支付可以取消", OrderStatusPending, false},
		{"已支付可以取消", OrderStatusPaid, false},
		{"已发货不能取消", OrderStatusShipped, true},
		{"已送达不能取消", OrderStatusDelivered, true},
		{"已取消不能重复取消", OrderStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newPendingOrder(t)
			o.Status = tt.status

			err := o.Cancel()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, tt.status, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OrderStatusCancelled, o.Status)
		})
	}
}

func TestApplyUpdate(t *testing.T) {
	t.Run("已发货改为已取消被拒绝", func(t *testing.T) {
		o := newPendingOrder(t)
		o.Status = OrderStatusShipped
		cancelled := OrderStatusCancelled
		notes := "x"

		err := o.ApplyUpdate(UpdateParams{Status: &cancelled, Notes: &notes})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, OrderStatusShipped, o.Status)
		assert.Empty(t, o.Notes)
	})

	t.Run("其他状态变化不做限制", func(t *testing.T) {
		o := newPendingOrder(t)
		o.Status = OrderStatusDelivered
		pending := OrderStatusPending

		require.NoError(t, o.ApplyUpdate(UpdateParams{Status: &pending}))
		assert.Equal(t, OrderStatusPending, o.Status)
	})

	t.Run("修改地址和支付方式", func(t *testing.T) {
		o := newPendingOrder(t)
		addr := "Calle 1 #2-3"
		pm := PaymentPaypal

		require.NoError(t, o.ApplyUpdate(UpdateParams{ShippingAddress: &addr, PaymentMethod: &pm}))
		assert.Equal(t, addr, o.ShippingAddress)
		assert.Equal(t, PaymentPaypal, o.PaymentMethod)
	})

	t.Run("非法状态值", func(t *testing.T) {
		o := newPendingOrder(t)
		bad := OrderStatus(42)
		assert.Equal(t, ErrInvalidStatus, o.ApplyUpdate(UpdateParams{Status: &bad}))
	})
}

func TestCanDelete(t *testing.T) {
	o := newPendingOrder(t)
	assert.NoError(t, o.CanDelete())

	o.Status = OrderStatusShipped
	assert.ErrorIs(t, o.CanDelete(), ErrCannotDelete)

	o.Status = OrderStatusDelivered
	assert.ErrorIs(t, o.CanDelete(), ErrCannotDelete)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)
	assert.Equal(t, "SHIPPED", s.String())

	_, err = ParseStatus("LOST")
	assert.Equal(t, ErrInvalidStatus, err)
}

func TestGenerateOrderNo(t *testing.T) {
	a, b := GenerateOrderNo(), GenerateOrderNo()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 23)
	assert.True(t, strings.HasPrefix(a, "ORD"))
}
