package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/api"
	"github.com/zombar/biasanalyzer/internal/database"
	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/llm"
	"github.com/zombar/biasanalyzer/internal/metrics"
	"github.com/zombar/biasanalyzer/internal/nlp"
	"github.com/zombar/biasanalyzer/internal/ollama"
	"github.com/zombar/biasanalyzer/internal/queue"
	"github.com/zombar/biasanalyzer/internal/service"
	"github.com/zombar/biasanalyzer/internal/tracing"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
	"github.com/zombar/biasanalyzer/pkg/logging"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("biasanalyzer service initializing", "version", "1.0.0")

	tp, err := tracing.InitTracer("biasanalyzer")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
	}

	// Get default values from environment variables, with fallbacks
	var (
		port          = flag.String("port", getEnv("PORT", "8080"), "Server port (env: PORT)")
		dbPath        = flag.String("db", getEnv("DB_PATH", "biasanalyzer.db"), "Database file path (env: DB_PATH)")
		redisAddr     = flag.String("redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address for the job queue (env: REDIS_ADDR)")
		useQueue      = flag.Bool("use-queue", getEnvBool("USE_QUEUE", false), "Enable asynchronous jobs (env: USE_QUEUE)")
		concurrency   = flag.Int("worker-concurrency", getEnvInt("WORKER_CONCURRENCY", 4), "Queue worker concurrency (env: WORKER_CONCURRENCY)")
		ollamaURL     = flag.String("ollama-url", getEnv("OLLAMA_URL", "http://localhost:11434"), "Ollama API URL (env: OLLAMA_URL)")
		ollamaModel   = flag.String("ollama-model", getEnv("OLLAMA_MODEL", "llama3.2"), "Ollama model (env: OLLAMA_MODEL)")
		useOllama     = flag.Bool("use-ollama", getEnvBool("USE_OLLAMA", false), "Use Ollama for sentiment classification (env: USE_OLLAMA)")
		llmProvider   = flag.String("llm-provider", getEnv("LLM_PROVIDER", ""), "Rewrite and summary provider: openai, ollama or empty (env: LLM_PROVIDER)")
		openAIKey     = flag.String("openai-api-key", getEnv("OPENAI_API_KEY", ""), "OpenAI API key (env: OPENAI_API_KEY)")
		openAIModel   = flag.String("openai-model", getEnv("OPENAI_MODEL", ""), "OpenAI model (env: OPENAI_MODEL)")
		annotatorURL  = flag.String("annotator-url", getEnv("ANNOTATOR_URL", ""), "Linguistic annotation service URL (env: ANNOTATOR_URL)")
		lexiconPath   = flag.String("lexicon", getEnv("LEXICON_PATH", ""), "Lexicon overlay file (env: LEXICON_PATH)")
		wikipediaURL  = flag.String("wikipedia-api-url", getEnv("WIKIPEDIA_API_URL", wikipedia.DefaultAPIURL), "Encyclopedia API URL (env: WIKIPEDIA_API_URL)")
		corsOrigins   = flag.String("cors-origins", getEnv("CORS_ORIGINS", "*"), "Comma-separated allowed origins (env: CORS_ORIGINS)")
		wikipediaRate = flag.Float64("wikipedia-rps", getEnvFloat("WIKIPEDIA_RPS", 5), "Encyclopedia requests per second (env: WIKIPEDIA_RPS)")
	)
	flag.Parse()

	reg := newRegistry()
	m := metrics.New(reg)

	db, err := database.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := metrics.RegisterDBStats(reg, db.Conn(), "biasanalyzer"); err != nil {
		logger.Warn("failed to register database metrics", "error", err)
	}

	caps := analyzer.Capabilities{Logger: logger}
	capabilities := map[string]bool{}

	if *lexiconPath != "" {
		lex, err := lexicon.Load(*lexiconPath)
		if err != nil {
			logger.Error("failed to load lexicon", "error", err, "path", *lexiconPath)
			os.Exit(1)
		}
		caps.Lexicon = lex
		logger.Info("lexicon overlay loaded", "path", *lexiconPath)
	}

	if *annotatorURL != "" {
		ann, err := nlp.NewHTTPAnnotator(*annotatorURL)
		if err != nil {
			logger.Warn("failed to initialize annotator, using surface features only", "error", err, "url", *annotatorURL)
		} else {
			caps.Annotator = m.Annotator(ann)
		}
	}
	capabilities["annotator"] = caps.Annotator != nil

	if *useOllama {
		client, err := ollama.New(*ollamaURL, *ollamaModel)
		if err != nil {
			logger.Warn("failed to initialize Ollama client, using lexicon sentiment",
				"error", err,
				"ollama_url", *ollamaURL,
				"ollama_model", *ollamaModel,
			)
		} else {
			caps.Sentiment = m.Sentiment(client)
			logger.Info("Ollama sentiment classifier initialized", "model", *ollamaModel, "url", *ollamaURL)
		}
	}
	capabilities["sentiment_model"] = caps.Sentiment != nil

	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = *llmProvider
	switch strings.ToLower(*llmProvider) {
	case "openai":
		llmCfg.APIKey = *openAIKey
		llmCfg.Model = *openAIModel
	case "ollama":
		llmCfg.BaseURL = *ollamaURL
		llmCfg.Model = *ollamaModel
	}
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		logger.Warn("failed to initialize LLM provider, using local rewrites", "error", err, "provider", *llmProvider)
		provider = nil
	}
	if provider != nil {
		caps.Rewriter = m.Rewriter(provider)
		logger.Info("LLM provider initialized", "provider", provider.Name())
	}

	biasAnalyzer, err := analyzer.NewWithCapabilities(caps)
	if err != nil {
		logger.Error("failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	wiki, err := wikipedia.New(*wikipediaURL,
		wikipedia.WithStore(db),
		wikipedia.WithMetrics(m),
		wikipedia.WithLogger(logger),
		wikipedia.WithRateLimit(*wikipediaRate, 2),
	)
	if err != nil {
		logger.Error("failed to initialize encyclopedia client", "error", err)
		os.Exit(1)
	}

	svc, err := service.New(service.Config{
		Analyzer: biasAnalyzer,
		Fetcher:  wiki,
		Provider: provider,
		Metrics:  m,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}

	var jobs api.JobQueue
	if *useQueue {
		queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
		defer queueClient.Close()
		jobs = queueClient

		worker := queue.NewWorker(queue.WorkerConfig{
			RedisAddr:   *redisAddr,
			Concurrency: *concurrency,
			Logger:      logger,
		}, svc)
		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("queue worker stopped", "error", err)
			}
		}()
		defer worker.Shutdown()
	}

	apiHandler := api.NewHandler(api.Config{
		Service:        svc,
		Store:          db,
		Queue:          jobs,
		Gatherer:       reg,
		AllowedOrigins: splitList(*corsOrigins),
		Capabilities:   capabilities,
		Logger:         logger,
	})

	// Middleware chain: tracing -> HTTP logging -> metrics -> handlers
	handler := tracing.HTTPMiddleware("biasanalyzer")(
		logging.HTTPLoggingMiddleware(logger)(
			m.Middleware(apiHandler),
		),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // article analysis with model rewrites
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("biasanalyzer service starting",
			"port", *port,
			"database", *dbPath,
			"queue_enabled", *useQueue,
			"llm_provider", *llmProvider,
			"capabilities", capabilities,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// newRegistry returns a registry with the Go runtime and process collectors
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// splitList splits a comma-separated list, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
