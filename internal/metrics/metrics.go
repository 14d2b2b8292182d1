// Package metrics defines the Prometheus instruments of the service.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

const namespace = "biasanalyzer"

// Capability labels
const (
	CapabilityAnnotator = "annotator"
	CapabilitySentiment = "sentiment"
	CapabilityRewriter  = "rewriter"
)

// Metrics holds the service instruments. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	analysisDuration   *prometheus.HistogramVec
	findings           *prometheus.CounterVec
	capabilityFailures *prometheus.CounterVec
	wikipediaRequests  *prometheus.CounterVec
}

// New registers the instruments with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Document analysis latency by source kind.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		findings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Bias findings reported, by category.",
		}, []string{"category"}),
		capabilityFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_failures_total",
			Help:      "Failed calls to external capabilities that fell back to a local default.",
		}, []string{"capability"}),
		wikipediaRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wikipedia_requests_total",
			Help:      "Encyclopedia article fetches by result.",
		}, []string{"result"}),
	}
}

// RegisterDBStats exposes the connection pool statistics of db
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, dbName string) error {
	return reg.Register(collectors.NewDBStatsCollector(db, dbName))
}

// ObserveAnalysis records one analysis of the given kind ("text" or
// "article") and its findings
func (m *Metrics) ObserveAnalysis(kind string, d time.Duration, findings []models.Finding) {
	if m == nil {
		return
	}
	m.analysisDuration.WithLabelValues(kind).Observe(d.Seconds())
	for _, f := range findings {
		m.findings.WithLabelValues(f.Category.String()).Inc()
	}
}

// CapabilityFailure counts one failed capability call
func (m *Metrics) CapabilityFailure(capability string) {
	if m == nil {
		return
	}
	m.capabilityFailures.WithLabelValues(capability).Inc()
}

// WikipediaRequest counts one article fetch with its result label
func (m *Metrics) WikipediaRequest(result string) {
	if m == nil {
		return
	}
	m.wikipediaRequests.WithLabelValues(result).Inc()
}

// route collapses path parameters so that label cardinality stays bounded
func route(path string) string {
	if strings.HasPrefix(path, "/api/jobs/") {
		return "/api/jobs/{id}"
	}
	if strings.HasPrefix(path, "/api/articles/") {
		return "/api/articles/{title}"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and latency
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		rt := route(r.URL.Path)
		m.httpRequests.WithLabelValues(r.Method, rt, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, rt).Observe(time.Since(start).Seconds())
	})
}

type annotator struct {
	next nlp.Annotator
	m    *Metrics
}

func (a annotator) Annotate(ctx context.Context, text string) ([]nlp.Sentence, error) {
	out, err := a.next.Annotate(ctx, text)
	if err != nil {
		a.m.CapabilityFailure(CapabilityAnnotator)
	}
	return out, err
}

// Annotator counts the failures of a; nil stays nil
func (m *Metrics) Annotator(a nlp.Annotator) nlp.Annotator {
	if a == nil || m == nil {
		return a
	}
	return annotator{next: a, m: m}
}

type sentiment struct {
	next nlp.SentimentClassifier
	m    *Metrics
}

func (s sentiment) Classify(ctx context.Context, text string) (nlp.Sentiment, error) {
	out, err := s.next.Classify(ctx, text)
	if err != nil {
		s.m.CapabilityFailure(CapabilitySentiment)
	}
	return out, err
}

// Sentiment counts the failures of s; nil stays nil
func (m *Metrics) Sentiment(s nlp.SentimentClassifier) nlp.SentimentClassifier {
	if s == nil || m == nil {
		return s
	}
	return sentiment{next: s, m: m}
}

type rewriter struct {
	next analyzer.Rewriter
	m    *Metrics
}

func (r rewriter) Rewrite(ctx context.Context, req analyzer.RewriteRequest) (string, error) {
	out, err := r.next.Rewrite(ctx, req)
	if err != nil {
		r.m.CapabilityFailure(CapabilityRewriter)
	}
	return out, err
}

// Rewriter counts the failures of r; nil stays nil
func (m *Metrics) Rewriter(r analyzer.Rewriter) analyzer.Rewriter {
	if r == nil || m == nil {
		return r
	}
	return rewriter{next: r, m: m}
}
