package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

func TestObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAnalysis("text", 120*time.Millisecond, []models.Finding{
		{Category: models.HypeLanguage},
		{Category: models.HypeLanguage},
		{Category: models.FearMongering},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.findings.WithLabelValues("hype_language")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.findings.WithLabelValues("fear_mongering")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.analysisDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("text", time.Second, []models.Finding{{}})
	m.CapabilityFailure(CapabilitySentiment)
	m.WikipediaRequest("ok")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
	assert.Nil(t, m.Annotator(nil))
}

func TestMiddleware(t *testing.T) {
	m := New(prometheus.NewRegistry())
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/jobs/") {
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	for _, path := range []string{"/api/jobs/a", "/api/jobs/b", "/health"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/jobs/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/health", "200")))
}

type failingCapability struct{}

func (failingCapability) Annotate(ctx context.Context, text string) ([]nlp.Sentence, error) {
	return nil, errors.New("down")
}

func (failingCapability) Classify(ctx context.Context, text string) (nlp.Sentiment, error) {
	return nlp.Sentiment{}, errors.New("down")
}

func (failingCapability) Rewrite(ctx context.Context, req analyzer.RewriteRequest) (string, error) {
	return "", errors.New("down")
}

func TestCapabilityWrappers(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	_, err := m.Annotator(failingCapability{}).Annotate(ctx, "x")
	require.Error(t, err)
	_, err = m.Sentiment(failingCapability{}).Classify(ctx, "x")
	require.Error(t, err)
	_, err = m.Rewriter(failingCapability{}).Rewrite(ctx, analyzer.RewriteRequest{})
	require.Error(t, err)
	_, err = m.Rewriter(failingCapability{}).Rewrite(ctx, analyzer.RewriteRequest{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilityFailures.WithLabelValues(CapabilityAnnotator)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capabilityFailures.WithLabelValues(CapabilitySentiment)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.capabilityFailures.WithLabelValues(CapabilityRewriter)))
}

func TestWikipediaRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.WikipediaRequest("ok")
	m.WikipediaRequest("cache_hit")
	m.WikipediaRequest("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.wikipediaRequests.WithLabelValues("ok")))
}
