package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func TestInitTracer(t *testing.T) {
	// exporter惰性连接，collector不存在也能初始化
	shutdown, err := InitTracer("bookstore-test", "localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan(t *testing.T) {
	recorder := newRecorder(t)

	t.Run("子Span继承TraceID", func(t *testing.T) {
		ctx, root := StartSpan(context.Background(), "order", "PlaceOrderFromCart")
		_, child := StartSpan(ctx, "order", "ConfirmSale")

		assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())
		assert.NotEqual(t, root.SpanContext().SpanID(), child.SpanContext().SpanID())

		child.End()
		root.End()
	})

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ConfirmSale", spans[0].Name())
	assert.Equal(t, "PlaceOrderFromCart", spans[1].Name())
}

func TestRecordError(t *testing.T) {
	recorder := newRecorder(t)

	_, ok := StartSpan(context.Background(), "invoice", "IssueInvoice")
	RecordError(ok, nil)
	ok.End()

	_, failed := StartSpan(context.Background(), "inventory", "Reserve")
	RecordError(failed, errors.New("insufficient stock"))
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "insufficient stock", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)
}

func TestExtractIDs(t *testing.T) {
	newRecorder(t)

	t.Run("有效Context", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "test", "op")
		defer span.End()

		assert.Equal(t, span.SpanContext().TraceID().String(), ExtractTraceID(ctx))
		assert.Equal(t, span.SpanContext().SpanID().String(), ExtractSpanID(ctx))
		assert.Len(t, ExtractTraceID(ctx), 32)
	})

	t.Run("没有Span的Context", func(t *testing.T) {
		assert.Empty(t, ExtractTraceID(context.Background()))
		assert.Empty(t, ExtractSpanID(context.Background()))
	})
}
