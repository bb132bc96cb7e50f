package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("broker unavailable")

func fail() error    { return errBroker }
func succeed() error { return nil }

func tripAfter(n uint32, timeout time.Duration) Config {
	return Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= n
		},
	}
}

func TestClosedState(t *testing.T) {
	cb := NewCircuitBreaker("events", tripAfter(5, 30*time.Second))

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(succeed))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

func TestOpenState(t *testing.T) {
	cb := NewCircuitBreaker("events", tripAfter(5, 30*time.Second))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBroker)
	}
	require.Equal(t, StateOpen, cb.State())

	t.Run("打开后不调用实际函数", func(t *testing.T) {
		called := false
		err := cb.Execute(func() error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrOpenState)
		assert.False(t, called)
	})
}

func TestHalfOpen(t *testing.T) {
	t.Run("探测成功后关闭", func(t *testing.T) {
		cb := NewCircuitBreaker("events", tripAfter(3, 50*time.Millisecond))
		for i := 0; i < 3; i++ {
			_ = cb.Execute(fail)
		}
		require.Equal(t, StateOpen, cb.State())

		time.Sleep(80 * time.Millisecond)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(succeed))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("探测失败后重新打开", func(t *testing.T) {
		cb := NewCircuitBreaker("events", tripAfter(3, 50*time.Millisecond))
		for i := 0; i < 3; i++ {
			_ = cb.Execute(fail)
		}
		time.Sleep(80 * time.Millisecond)

		assert.ErrorIs(t, cb.Execute(fail), errBroker)
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestStateChangeCallback(t *testing.T) {
	cb := NewCircuitBreaker("events", tripAfter(2, 30*time.Second))

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	})

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)

	assert.Equal(t, []string{"events:CLOSED->OPEN"}, transitions)
}

func TestExecuteContext(t *testing.T) {
	cb := NewCircuitBreaker("events", Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.ExecuteContext(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(0), cb.Counts().Requests)

	err = cb.ExecuteContext(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestDefaults(t *testing.T) {
	cb := NewCircuitBreaker("events", Config{})
	for i := 0; i < 4; i++ {
		_ = cb.Execute(fail)
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestFailureRate(t *testing.T) {
	c := Counts{Requests: 10, TotalFailures: 4}
	assert.InDelta(t, 0.4, c.FailureRate(), 1e-9)

	c.Reset()
	assert.Equal(t, 0.0, c.FailureRate())
}
