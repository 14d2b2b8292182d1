// Package service runs the end-to-end analyses shared by the HTTP API, the
// task queue worker and the CLI.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/llm"
	"github.com/zombar/biasanalyzer/internal/metrics"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/tracing"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

// Fetcher retrieves encyclopedia articles
type Fetcher interface {
	Fetch(ctx context.Context, title string) (*models.Article, error)
}

// Rewrite sources
const (
	RewriteSourceProvider = "provider"
	RewriteSourceFallback = "fallback"
)

// Config holds the collaborators of a Service. Only Analyzer is required.
type Config struct {
	Analyzer *analyzer.Analyzer
	Fetcher  Fetcher
	Provider llm.Provider
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Service analyzes free text and encyclopedia articles. It is safe for
// concurrent use.
type Service struct {
	analyzer *analyzer.Analyzer
	fetcher  Fetcher
	provider llm.Provider
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Service
func New(cfg Config) (*Service, error) {
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("service: analyzer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		analyzer: cfg.Analyzer,
		fetcher:  cfg.Fetcher,
		provider: cfg.Provider,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With("component", "service"),
	}, nil
}

// NewID returns a random analysis identifier
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// HasFetcher reports whether article analysis is available
func (s *Service) HasFetcher() bool {
	return s.fetcher != nil
}

// Provider returns the language model provider, or nil
func (s *Service) Provider() llm.Provider {
	return s.provider
}

// AnalyzeText analyzes free text. id only labels the trace span. Finding
// offsets refer to text as given.
func (s *Service) AnalyzeText(ctx context.Context, id, text string, detailed bool) models.TextAnalysis {
	ctx, span := tracing.StartSpan(ctx, "bias.analyze_text",
		attribute.String("analysis.id", id),
		attribute.Int("text.length", len(text)),
		attribute.Bool("detailed", detailed),
	)
	defer span.End()

	start := time.Now()
	result := s.analyzer.AnalyzeDocument(ctx, text, detailed)
	s.metrics.ObserveAnalysis(models.SourceText, time.Since(start), result.Findings)
	span.SetAttributes(attribute.Int("findings.count", len(result.Findings)))

	return result
}

// AnalyzeArticle fetches an article, checks that it can be analyzed and
// returns its analysis with a document summary. The wikipedia package
// sentinel errors are returned for invalid, missing, off-topic and short
// articles.
func (s *Service) AnalyzeArticle(ctx context.Context, id, title string, detailed bool) (*models.ArticleAnalysis, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("service: article fetching is not configured")
	}
	ctx, span := tracing.StartSpan(ctx, "bias.analyze_article",
		attribute.String("analysis.id", id),
		attribute.String("article.query", title),
		attribute.Bool("detailed", detailed),
	)
	defer span.End()

	if err := wikipedia.ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %q", err, title)
	}

	article, err := s.fetcher.Fetch(ctx, title)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	content, err := wikipedia.Prepare(article)
	if err != nil {
		return nil, err
	}
	article.Content = content

	start := time.Now()
	doc := s.analyzer.AnalyzeDocument(ctx, content, detailed)
	s.metrics.ObserveAnalysis(models.SourceArticle, time.Since(start), doc.Findings)

	result := &models.ArticleAnalysis{
		Article:          *article,
		Findings:         doc.Findings,
		Report:           doc.Report,
		Summary:          llm.DocumentSummary(ctx, s.provider, article.Title, doc.Report, s.logger),
		SegmentsAnalyzed: doc.SegmentsAnalyzed,
		Detailed:         detailed,
	}
	span.SetAttributes(
		attribute.String("article.title", article.Title),
		attribute.Int("findings.count", len(doc.Findings)),
	)
	s.logger.Info("article analyzed", "title", article.Title,
		"segments", doc.SegmentsAnalyzed, "findings", len(doc.Findings))

	return result, nil
}

// Rewrite returns a neutral version of text. The provider is used when
// configured; its failures and absence fall back to the local rewrite.
func (s *Service) Rewrite(ctx context.Context, text string, category models.Category, explanation string) (string, string) {
	if s.provider != nil {
		out, err := s.provider.Rewrite(ctx, analyzer.RewriteRequest{
			Text:        text,
			Category:    category,
			Explanation: explanation,
		})
		if err == nil && strings.TrimSpace(out) != "" {
			return out, RewriteSourceProvider
		}
		s.metrics.CapabilityFailure(metrics.CapabilityRewriter)
		s.logger.Warn("rewrite provider failed, using local fallback", "provider", s.provider.Name(), "error", err)
	}
	return analyzer.FallbackRewrite(text, category), RewriteSourceFallback
}
