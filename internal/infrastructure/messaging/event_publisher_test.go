package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-commerce/internal/domain/event"
	"github.com/xiebiao/bookstore-commerce/pkg/circuitbreaker"
)

type recordingSender struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *recordingSender) Publish(_ context.Context, routingKey string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, routingKey)
	return nil
}

func newBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.Config{
		Timeout: time.Minute,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	})
}

func TestEventPublisher_Publish(t *testing.T) {
	sender := &recordingSender{}
	p := NewEventPublisher(sender, newBreaker(), zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), event.New(event.OrderCreated, event.OrderCreatedPayload{OrderID: 1})))
	require.NoError(t, p.Publish(context.Background(), event.New(event.InventoryLowStock, event.LowStockPayload{BookID: 2})))

	assert.Equal(t, []string{"order.created", "inventory.low_stock"}, sender.keys)
}

func TestEventPublisher_BreakerOpens(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	breaker := newBreaker()
	p := NewEventPublisher(sender, breaker, zap.NewNop())
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, event.New(event.OrderCreated, nil)))
	assert.Error(t, p.Publish(ctx, event.New(event.OrderCreated, nil)))
	require.Equal(t, circuitbreaker.StateOpen, breaker.State())

	t.Run("熔断后不再调用Sender", func(t *testing.T) {
		sender.err = nil
		err := p.Publish(ctx, event.New(event.OrderCancelled, nil))
		assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
		assert.Empty(t, sender.keys)
	})
}
