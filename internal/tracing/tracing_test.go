package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	return exporter, tp
}

func TestInitTracer(t *testing.T) {
	_, err := InitTracer("")
	assert.Error(t, err)

	tp, err := InitTracer("biasanalyzer-test")
	require.NoError(t, err)
	defer func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	}()

	ctx, span := StartSpan(context.Background(), "op")
	defer span.End()
	assert.Len(t, TraceIDFromContext(ctx), 32)
	assert.Len(t, SpanIDFromContext(ctx), 16)
}

func TestIDsWithoutSpan(t *testing.T) {
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
	assert.Equal(t, "", SpanIDFromContext(context.Background()))
}

func TestHTTPMiddleware(t *testing.T) {
	exporter, _ := setupExporter(t)

	var traceID string
	handler := HTTPMiddleware("biasanalyzer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceIDFromContext(r.Context())
		SetSpanAttributes(r.Context(), attribute.Int("text.length", 42))
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", traceID)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "POST /api/analyze", span.Name)
	assert.Equal(t, trace.SpanKindServer, span.SpanKind)
	assert.Equal(t, codes.Error, span.Status.Code)
	assert.Equal(t, "00f067aa0ba902b7", span.Parent.SpanID().String())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, int64(500), attrs["http.status_code"].AsInt64())
	assert.Equal(t, int64(42), attrs["text.length"].AsInt64())
}

func TestContextWithRemoteParent(t *testing.T) {
	exporter, _ := setupExporter(t)

	ctx := ContextWithRemoteParent(context.Background(),
		"4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	_, span := StartSpan(ctx, "asynq.task.process")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())

	unchanged := ContextWithRemoteParent(context.Background(), "not-hex", "00f067aa0ba902b7")
	assert.Equal(t, "", TraceIDFromContext(unchanged))
}

func TestRecordError(t *testing.T) {
	exporter, _ := setupExporter(t)

	ctx, span := StartSpan(context.Background(), "fetch")
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
}
