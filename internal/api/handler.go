package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/queue"
	"github.com/zombar/biasanalyzer/internal/service"
	"github.com/zombar/biasanalyzer/internal/tracing"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
	"github.com/zombar/biasanalyzer/pkg/logging"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Store lists the cached articles
type Store interface {
	ListArticles(ctx context.Context, limit, offset int) ([]models.ArticleSummary, error)
}

// JobQueue enqueues analyses and reports their status
type JobQueue interface {
	EnqueueArticle(ctx context.Context, jobID, title string, detailed bool) (string, error)
	EnqueueText(ctx context.Context, jobID, text string, detailed bool) (string, error)
	JobStatus(id string) (*queue.JobStatus, error)
}

// Config holds the collaborators of the API. Service is required; a nil
// Store or Queue disables the endpoints that need them.
type Config struct {
	Service  *service.Service
	Store    Store
	Queue    JobQueue
	Gatherer prometheus.Gatherer

	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string

	// Capabilities reports which optional capabilities are configured
	Capabilities map[string]bool

	Logger *slog.Logger
}

// Handler handles HTTP requests
type Handler struct {
	svc          *service.Service
	store        Store
	queue        JobQueue
	capabilities map[string]bool
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	mux          *http.ServeMux
}

// NewHandler creates a new API handler with CORS support
func NewHandler(cfg Config) http.Handler {
	h := newHandler(cfg)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

func newHandler(cfg Config) *Handler {
	h := &Handler{
		svc:          cfg.Service,
		store:        cfg.Store,
		queue:        cfg.Queue,
		capabilities: cfg.Capabilities,
		gatherer:     cfg.Gatherer,
		logger:       cfg.Logger,
		mux:          http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.gatherer == nil {
		h.gatherer = prometheus.DefaultGatherer
	}
	if h.capabilities == nil {
		h.capabilities = map[string]bool{}
	}
	h.setupRoutes()
	return h
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	h.mux.HandleFunc("/health", h.handleHealth)
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/analyze/article", h.handleAnalyzeArticle)
	h.mux.HandleFunc("/api/rewrite", h.handleRewrite)
	h.mux.HandleFunc("/api/jobs", h.handleEnqueue)
	h.mux.HandleFunc("/api/jobs/", h.handleJobStatus)
	h.mux.HandleFunc("/api/articles", h.handleListArticles)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	capabilities := map[string]bool{
		"article_fetch": h.svc.HasFetcher(),
		"rewrite_model": h.svc.Provider() != nil,
		"queue":         h.queue != nil,
		"storage":       h.store != nil,
	}
	for name, ok := range h.capabilities {
		capabilities[name] = ok
	}

	respondJSON(w, map[string]any{
		"status":       "healthy",
		"time":         time.Now().Format(time.RFC3339),
		"capabilities": capabilities,
	}, http.StatusOK)
}

type analyzeRequest struct {
	Text     string `json:"text"`
	Detailed bool   `json:"detailed,omitempty"`
}

// handleAnalyze analyzes free text synchronously
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, "Text field is required", http.StatusBadRequest)
		return
	}

	tracing.SetSpanAttributes(r.Context(),
		attribute.Int("text.length", len(req.Text)),
		attribute.Bool("detailed", req.Detailed))

	result := h.svc.AnalyzeText(r.Context(), service.NewID(), req.Text, req.Detailed)
	respondJSON(w, result, http.StatusOK)
}

type articleRequest struct {
	Title    string `json:"title"`
	Detailed bool   `json:"detailed,omitempty"`
}

// handleAnalyzeArticle fetches and analyzes an encyclopedia article
func (h *Handler) handleAnalyzeArticle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.svc.HasFetcher() {
		respondError(w, "Article analysis is not available", http.StatusServiceUnavailable)
		return
	}

	var req articleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tracing.SetSpanAttributes(r.Context(), attribute.String("article.query", req.Title))

	result, err := h.svc.AnalyzeArticle(r.Context(), service.NewID(), req.Title, req.Detailed)
	if err != nil {
		h.fail(w, r, articleErrorStatus(err), err)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// articleErrorStatus maps article analysis failures to HTTP statuses
func articleErrorStatus(err error) int {
	switch {
	case errors.Is(err, wikipedia.ErrInvalidTitle),
		errors.Is(err, wikipedia.ErrNotAIRelated),
		errors.Is(err, wikipedia.ErrTooShort):
		return http.StatusBadRequest
	case errors.Is(err, wikipedia.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

type rewriteRequest struct {
	Text        string           `json:"text"`
	Category    *models.Category `json:"category"`
	Explanation string           `json:"explanation,omitempty"`
}

// handleRewrite returns a neutral version of a biased passage
func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rewriteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, "Text field is required", http.StatusBadRequest)
		return
	}
	if req.Category == nil {
		respondError(w, "Category field is required", http.StatusBadRequest)
		return
	}

	rewrite, source := h.svc.Rewrite(r.Context(), req.Text, *req.Category, req.Explanation)
	respondJSON(w, map[string]any{
		"original": req.Text,
		"rewrite":  rewrite,
		"category": *req.Category,
		"source":   source,
	}, http.StatusOK)
}

type jobRequest struct {
	Title    string `json:"title,omitempty"`
	Text     string `json:"text,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// handleEnqueue queues an article or text analysis
func (h *Handler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.queue == nil {
		respondError(w, "Job queue is not enabled", http.StatusServiceUnavailable)
		return
	}

	var req jobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hasTitle, hasText := strings.TrimSpace(req.Title) != "", strings.TrimSpace(req.Text) != ""
	if hasTitle == hasText {
		respondError(w, "Exactly one of title or text is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	jobID := service.NewID()
	var err error
	if hasTitle {
		if vErr := wikipedia.ValidateTitle(req.Title); vErr != nil {
			respondError(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		if !h.svc.HasFetcher() {
			respondError(w, "Article analysis is not available", http.StatusServiceUnavailable)
			return
		}
		_, err = h.queue.EnqueueArticle(ctx, jobID, req.Title, req.Detailed)
	} else {
		_, err = h.queue.EnqueueText(ctx, jobID, req.Text, req.Detailed)
	}
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, fmt.Errorf("failed to enqueue analysis: %w", err))
		return
	}

	tracing.SetSpanAttributes(ctx, attribute.String("job.id", jobID))
	respondJSON(w, map[string]any{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Analysis queued for processing",
	}, http.StatusAccepted)
}

// handleJobStatus reports the state and result of a queued analysis
func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.queue == nil {
		respondError(w, "Job queue is not enabled", http.StatusServiceUnavailable)
		return
	}

	jobID := pathID(r.URL.Path, "/api/jobs/")
	if jobID == "" {
		respondError(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	status, err := h.queue.JobStatus(jobID)
	if errors.Is(err, queue.ErrJobNotFound) {
		respondError(w, "Job not found - it may have expired", http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, status, http.StatusOK)
}

// handleListArticles lists cached articles with pagination
func (h *Handler) handleListArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		respondError(w, "Storage is not enabled", http.StatusServiceUnavailable)
		return
	}

	limit, offset := pagination(r)
	articles, err := h.store.ListArticles(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, articles, http.StatusOK)
}

// decodeBody decodes a bounded JSON body, answering 400 or 413 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID returns the first path segment after prefix
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(id, "/"); idx != -1 {
		id = id[:idx]
	}
	return id
}

// pagination reads limit (default 10, at most 100) and offset
func pagination(r *http.Request) (int, int) {
	limit, offset := 10, 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, 100)
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// fail logs err and responds with it
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	logging.HTTPErrorLogger(h.logger, statusCode, err, r)
	respondError(w, err.Error(), statusCode)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, map[string]string{"error": message}, statusCode)
}
