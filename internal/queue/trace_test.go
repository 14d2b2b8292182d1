package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return tp, exporter
}

// TestTraceContextCapturedOnEnqueue tests that task payloads carry the
// enqueuing span
func TestTraceContextCapturedOnEnqueue(t *testing.T) {
	tp, _ := setupTracer(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "http.request")
	defer span.End()
	parent := span.SpanContext()

	article, err := NewAnalyzeArticleTask(ctx, "job-1", "Chatbot", false)
	require.NoError(t, err)
	text, err := NewAnalyzeTextTask(ctx, "job-2", "A IA vai mudar tudo.", false)
	require.NoError(t, err)

	for _, payloadBytes := range [][]byte{article.Payload(), text.Payload()} {
		var payload struct {
			TraceID    string `json:"trace_id"`
			SpanID     string `json:"span_id"`
			EnqueuedAt int64  `json:"enqueued_at"`
		}
		require.NoError(t, json.Unmarshal(payloadBytes, &payload))
		assert.Equal(t, parent.TraceID().String(), payload.TraceID)
		assert.Equal(t, parent.SpanID().String(), payload.SpanID)
		assert.NotZero(t, payload.EnqueuedAt)
	}
}

// TestWorkerContinuesTrace tests that processing spans join the trace that
// enqueued the task
func TestWorkerContinuesTrace(t *testing.T) {
	tp, exporter := setupTracer(t)

	ctx, enqueueSpan := tp.Tracer("test").Start(context.Background(), "http.request")
	task, err := NewAnalyzeTextTask(ctx, "job-5", "A IA certamente vai dominar tudo.", false)
	require.NoError(t, err)
	enqueueSpan.End()
	parent := enqueueSpan.SpanContext()

	// handlers run with a fresh context, as on the asynq server
	w := newTestWorker(&fakeRunner{})
	require.NoError(t, w.handleAnalyzeText(context.Background(), task))

	var found bool
	for _, s := range exporter.GetSpans() {
		if s.Name != "asynq.task.process" {
			continue
		}
		found = true
		assert.Equal(t, parent.TraceID(), s.SpanContext.TraceID())
		assert.Equal(t, parent.SpanID(), s.Parent.SpanID())
		assert.True(t, s.Parent.IsRemote())

		attrs := map[string]string{}
		for _, kv := range s.Attributes {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, TypeAnalyzeText, attrs["task.type"])
		assert.Equal(t, "job-5", attrs["job.id"])
	}
	assert.True(t, found, "processing span not exported")
}

// TestWorkerWithoutTraceContext tests that tasks without trace IDs start a
// new trace
func TestWorkerWithoutTraceContext(t *testing.T) {
	_, exporter := setupTracer(t)

	task, err := NewAnalyzeArticleTask(context.Background(), "job-6", "Chatbot", false)
	require.NoError(t, err)

	w := newTestWorker(&fakeRunner{})
	require.NoError(t, w.handleAnalyzeArticle(context.Background(), task))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent.IsValid())
}
