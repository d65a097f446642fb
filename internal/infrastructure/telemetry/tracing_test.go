package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withTestTracer installs a recording tracer provider as the global
// provider for the duration of the test.
func withTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func endedAttrs(span sdktrace.ReadOnlySpan) map[string]any {
	attrs := make(map[string]any)
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	return attrs
}

func TestStartSpan(t *testing.T) {
	recorder := withTestTracer(t)

	ctx, span := StartSpan(context.Background(), "reservation.reserve")
	require.NotNil(t, span)
	assert.Equal(t, span, trace.SpanFromContext(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "reservation.reserve", ended[0].Name())
	assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())
}

func TestStartSpan_Options(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "order.consume",
		WithSpanKind(trace.SpanKindConsumer),
		WithAttribute(SpanAttrOrderID, int64(42)),
	)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, trace.SpanKindConsumer, ended[0].SpanKind())
	assert.Equal(t, int64(42), endedAttrs(ended[0])["order_id"])
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartServiceSpan(context.Background(), "stock", "increase")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "stock.increase", ended[0].Name())
}

func TestSetAttributes(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "stock.decrease")
	SetAttributes(span,
		SpanAttrProductColorID, "PC-RED-01",
		SpanAttrQuantity, int64(12),
		123, "non-string key is skipped",
		"dangling key without value is skipped",
	)
	span.End()

	attrs := endedAttrs(recorder.Ended()[0])
	assert.Equal(t, "PC-RED-01", attrs["product_color_id"])
	assert.Equal(t, int64(12), attrs["quantity"])
	assert.Len(t, attrs, 2)
}

func TestSetAttribute_TypeConversions(t *testing.T) {
	recorder := withTestTracer(t)

	id := uuid.New()
	_, span := StartSpan(context.Background(), "warehouse.create")
	SetAttribute(span, "count", 3)
	SetAttribute(span, "partial", true)
	SetAttribute(span, "fill_ratio", 0.75)
	SetAttribute(span, SpanAttrWarehouseID, id) // fmt.Stringer
	SetAttribute(span, "codes", []string{"WH1", "WH2"})
	span.End()

	attrs := endedAttrs(recorder.Ended()[0])
	assert.Equal(t, int64(3), attrs["count"])
	assert.Equal(t, true, attrs["partial"])
	assert.Equal(t, 0.75, attrs["fill_ratio"])
	assert.Equal(t, id.String(), attrs["warehouse_id"])
	assert.Equal(t, []string{"WH1", "WH2"}, attrs["codes"])
}

func TestRecordError(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "reservation.release")
	RecordError(span, assert.AnError)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestRecordError_NilErrorIgnored(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "reservation.release")
	RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
	assert.Empty(t, ended[0].Events())
}

func TestSetOK(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "stock.increase")
	SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	recorder := withTestTracer(t)

	_, span := StartSpan(context.Background(), "reservation.reserve")
	AddEvent(span, "stock_reserved",
		SpanAttrProductColorID, "PC-RED-01",
		SpanAttrQuantity, int64(4),
	)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)

	event := ended[0].Events()[0]
	assert.Equal(t, "stock_reserved", event.Name)
	assert.Contains(t, event.Attributes, attribute.String("product_color_id", "PC-RED-01"))
	assert.Contains(t, event.Attributes, attribute.Int64("quantity", 4))
}

func TestHelpers_NilSpanSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "key", "value")
		SetAttribute(nil, "key", "value")
		RecordError(nil, assert.AnError)
		SetOK(nil)
		AddEvent(nil, "event")
	})
}

func TestGetTraceID(t *testing.T) {
	withTestTracer(t)

	assert.Empty(t, GetTraceID(context.Background()))

	ctx, span := StartSpan(context.Background(), "stock.lookup")
	defer span.End()

	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)
	assert.Len(t, traceID, 32)
}

func TestGetSpanID(t *testing.T) {
	withTestTracer(t)

	assert.Empty(t, GetSpanID(context.Background()))

	ctx, span := StartSpan(context.Background(), "stock.lookup")
	defer span.End()

	spanID := GetSpanID(ctx)
	assert.NotEmpty(t, spanID)
	assert.Len(t, spanID, 16)
}

func TestSpanFromContext(t *testing.T) {
	withTestTracer(t)

	ctx, span := StartSpan(context.Background(), "stock.lookup")
	defer span.End()

	assert.Equal(t, span, SpanFromContext(ctx))
}
