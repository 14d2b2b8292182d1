package queue

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/biasanalyzer/internal/tracing"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

// Task type constants
const (
	TypeAnalyzeArticle = "bias:analyze_article"
	TypeAnalyzeText    = "bias:analyze_text"
)

// Queue names and priorities
const (
	QueueTexts    = "texts"
	QueueArticles = "articles"
)

var queuePriorities = map[string]int{
	QueueTexts:    6,
	QueueArticles: 4,
}

// ResultRetention is how long completed jobs and their results are kept
const ResultRetention = 24 * time.Hour

// compressThreshold is the text size above which payloads are gzipped
const compressThreshold = 32 * 1024

// AnalyzeArticlePayload is the payload of an article analysis job
type AnalyzeArticlePayload struct {
	JobID    string `json:"job_id"`
	Title    string `json:"title"`
	Detailed bool   `json:"detailed,omitempty"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// AnalyzeTextPayload is the payload of a free text analysis job. Large texts
// travel in CompressedText instead of Text.
type AnalyzeTextPayload struct {
	JobID          string `json:"job_id"`
	Text           string `json:"text,omitempty"`
	CompressedText string `json:"compressed_text,omitempty"` // gzip + base64
	Detailed       bool   `json:"detailed,omitempty"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Content returns the text of the payload, decompressing it when needed
func (p AnalyzeTextPayload) Content() (string, error) {
	if p.CompressedText != "" {
		return decompressText(p.CompressedText)
	}
	return p.Text, nil
}

// NewAnalyzeArticleTask builds an article analysis task carrying the trace
// context of ctx
func NewAnalyzeArticleTask(ctx context.Context, jobID, title string, detailed bool) (*asynq.Task, error) {
	payload := AnalyzeArticlePayload{
		JobID:      jobID,
		Title:      title,
		Detailed:   detailed,
		TraceID:    tracing.TraceIDFromContext(ctx),
		SpanID:     tracing.SpanIDFromContext(ctx),
		EnqueuedAt: time.Now().UnixNano(),
	}
	recordEnqueue(ctx, TypeAnalyzeArticle, jobID, payload.EnqueuedAt)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeAnalyzeArticle, data,
		asynq.TaskID(jobID),
		asynq.Queue(QueueArticles),
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(ResultRetention),
	), nil
}

// NewAnalyzeTextTask builds a text analysis task carrying the trace context
// of ctx
func NewAnalyzeTextTask(ctx context.Context, jobID, text string, detailed bool) (*asynq.Task, error) {
	payload := AnalyzeTextPayload{
		JobID:      jobID,
		Detailed:   detailed,
		TraceID:    tracing.TraceIDFromContext(ctx),
		SpanID:     tracing.SpanIDFromContext(ctx),
		EnqueuedAt: time.Now().UnixNano(),
	}
	if len(text) > compressThreshold {
		compressed, err := compressText(text)
		if err != nil {
			return nil, err
		}
		payload.CompressedText = compressed
	} else {
		payload.Text = text
	}
	recordEnqueue(ctx, TypeAnalyzeText, jobID, payload.EnqueuedAt)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeAnalyzeText, data,
		asynq.TaskID(jobID),
		asynq.Queue(QueueTexts),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(ResultRetention),
	), nil
}

func recordEnqueue(ctx context.Context, taskType, jobID string, enqueuedAt int64) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}
	span.AddEvent("task_enqueued", trace.WithAttributes(
		attribute.String("task.type", taskType),
		attribute.String("job.id", jobID),
		attribute.Int64("enqueued_at", enqueuedAt),
	))
}

// startTaskSpan continues the trace recorded in the payload, if any
func startTaskSpan(ctx context.Context, taskType, jobID, traceID, spanID string, enqueuedAt int64) (context.Context, trace.Span) {
	var wait time.Duration
	if enqueuedAt > 0 {
		wait = time.Since(time.Unix(0, enqueuedAt))
	}
	if traceID != "" && spanID != "" {
		ctx = tracing.ContextWithRemoteParent(ctx, traceID, spanID)
	}
	retryCount, _ := asynq.GetRetryCount(ctx)

	ctx, span := tracing.StartSpan(ctx, "asynq.task.process",
		attribute.String("task.type", taskType),
		attribute.String("job.id", jobID),
		attribute.Int("retry_count", retryCount),
		attribute.Float64("queue.wait_time_seconds", wait.Seconds()),
	)
	span.AddEvent("task_processing_started", trace.WithAttributes(
		attribute.Float64("wait_time_seconds", wait.Seconds()),
	))
	return ctx, span
}

// handleAnalyzeArticle fetches and analyzes an encyclopedia article
func (w *Worker) handleAnalyzeArticle(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeArticlePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("%w: invalid task payload: %v", asynq.SkipRetry, err)
	}

	ctx, span := startTaskSpan(ctx, TypeAnalyzeArticle, payload.JobID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	w.logger.Info("analyzing article", "job_id", payload.JobID, "title", payload.Title)

	result, err := w.runner.AnalyzeArticle(ctx, payload.JobID, payload.Title, payload.Detailed)
	if err != nil {
		tracing.RecordError(ctx, err)
		if isRetriable(err) {
			w.logger.Warn("retriable error, will retry", "job_id", payload.JobID, "error", err)
			return err
		}
		w.logger.Error("article analysis failed", "job_id", payload.JobID, "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	w.logger.Info("article analysis completed", "job_id", payload.JobID, "findings", len(result.Findings))
	return writeResult(t, result)
}

// handleAnalyzeText analyzes free text
func (w *Worker) handleAnalyzeText(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeTextPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("%w: invalid task payload: %v", asynq.SkipRetry, err)
	}
	text, err := payload.Content()
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	ctx, span := startTaskSpan(ctx, TypeAnalyzeText, payload.JobID, payload.TraceID, payload.SpanID, payload.EnqueuedAt)
	defer span.End()

	w.logger.Info("analyzing text", "job_id", payload.JobID, "text_length", len(text))

	result := w.runner.AnalyzeText(ctx, payload.JobID, text, payload.Detailed)

	w.logger.Info("text analysis completed", "job_id", payload.JobID, "findings", len(result.Findings))
	return writeResult(t, result)
}

// writeResult stores the JSON result on the task. Tasks built outside a
// server have no result writer.
func writeResult(t *asynq.Task, result any) error {
	rw := t.ResultWriter()
	if rw == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := rw.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// isRetriable reports whether err is a transient network failure. Article
// rejections are never retried.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	for _, permanent := range []error{
		wikipedia.ErrInvalidTitle, wikipedia.ErrNotFound,
		wikipedia.ErrNotAIRelated, wikipedia.ErrTooShort,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"unexpected status 5",
		"unexpected status 429",
		"i/o timeout",
		"no such host",
		"network is unreachable",
	}
	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// retryDelay backs off exponentially from 10s, capped at 10 minutes
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	const (
		base    = 10 * time.Second
		ceiling = 10 * time.Minute
	)
	if n < 0 {
		n = 0
	}
	if n > 6 {
		return ceiling
	}
	return min(base<<n, ceiling)
}

func compressText(text string) (string, error) {
	if text == "" {
		return "", nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(text)); err != nil {
		return "", fmt.Errorf("failed to write to gzip: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decompressText(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	out, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("failed to read decompressed data: %w", err)
	}
	return string(out), nil
}
