package queue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zombar/biasanalyzer/internal/models"
)

// Runner performs the analyses behind the task handlers
type Runner interface {
	AnalyzeText(ctx context.Context, id, text string, detailed bool) models.TextAnalysis
	AnalyzeArticle(ctx context.Context, id, title string, detailed bool) (*models.ArticleAnalysis, error)
}

// Worker wraps the Asynq server for processing tasks
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	runner      Runner
	concurrency int
	logger      *slog.Logger
}

// WorkerConfig contains configuration for the queue worker
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
	Logger      *slog.Logger
}

// NewWorker creates a new queue worker
func NewWorker(cfg WorkerConfig, runner Runner) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "queue_worker")

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		// Proportional priority: short text jobs ahead of network-bound articles
		Queues:         queuePriorities,
		StrictPriority: false,

		RetryDelayFunc:  retryDelay,
		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			logger.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
		Logger: newAsynqLogger(logger),
	}

	w := &Worker{
		server:      asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, serverCfg),
		mux:         asynq.NewServeMux(),
		runner:      runner,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
	w.registerHandlers()

	return w
}

// registerHandlers registers all task handlers with the worker
func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TypeAnalyzeArticle, w.handleAnalyzeArticle)
	w.mux.HandleFunc(TypeAnalyzeText, w.handleAnalyzeText)
}

// Start runs the worker; it blocks until Shutdown
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker",
		"concurrency", w.concurrency,
		"queues", queuePriorities,
	)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}

// asynqLogger routes asynq's internal logging to slog
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(l *slog.Logger) asynqLogger {
	return asynqLogger{logger: l}
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
