package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/llm"
	"github.com/zombar/biasanalyzer/internal/metrics"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

const biasedClaim = "A IA certamente vai dominar tudo e substituirá todos os empregos."

var articleBody = "A inteligência artificial é um campo da ciência da computação dedicado a sistemas que aprendem com dados. " +
	biasedClaim + " Pesquisadores estudam seus efeitos na sociedade."

type fakeFetcher struct {
	mu       sync.Mutex
	articles map[string]*models.Article
	err      error
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, title string) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.articles[title]
	if !ok {
		return nil, wikipedia.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeProvider struct {
	rewrite    string
	rewriteErr error
	summary    string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Rewrite(context.Context, analyzer.RewriteRequest) (string, error) {
	return p.rewrite, p.rewriteErr
}

func (p *fakeProvider) Summarize(context.Context, llm.SummaryRequest) (string, error) {
	return p.summary, nil
}

// counterValue sums the samples of a counter family with the given label value
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func newService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Analyzer == nil {
		cfg.Analyzer = analyzer.New()
	}
	svc, err := New(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewRequiresAnalyzer(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestAnalyzeText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newService(t, Config{Metrics: m})

	ctx := context.Background()
	result := svc.AnalyzeText(ctx, "text-1", biasedClaim, false)

	require.Len(t, result.Findings, 1)
	f := result.Findings[0]
	assert.Equal(t, models.TechnologicalDeterminism, f.Category)
	assert.Equal(t, f.Segment.Text, string([]rune(biasedClaim)[f.Segment.Start:f.Segment.End]))
	assert.Equal(t, models.StatusBiasDetected, result.Report.Status)
	assert.Equal(t, 1.0, counterValue(t, reg, "biasanalyzer_findings_total", models.TechnologicalDeterminism.String()))
}

func TestAnalyzeTextNeutral(t *testing.T) {
	svc := newService(t, Config{})

	result := svc.AnalyzeText(context.Background(), "", "O sistema processa dados.", false)
	assert.Empty(t, result.Findings)
	assert.Equal(t, models.StatusNoBiasDetected, result.Report.Status)
}

func TestAnalyzeArticle(t *testing.T) {
	fetcher := &fakeFetcher{articles: map[string]*models.Article{
		"Inteligência artificial": {
			Title:     "Inteligência artificial",
			Content:   "  " + strings.ReplaceAll(articleBody, ". ", ".\n\n") + "\n",
			URL:       "https://pt.wikipedia.org/wiki/Inteligência_artificial",
			FetchedAt: time.Now(),
		},
	}}
	svc := newService(t, Config{Fetcher: fetcher, Provider: &fakeProvider{summary: "Resumo do modelo."}})

	ctx := context.Background()
	result, err := svc.AnalyzeArticle(ctx, "article-1", "Inteligência artificial", true)
	require.NoError(t, err)

	assert.Equal(t, articleBody, result.Article.Content)
	assert.True(t, result.Detailed)
	require.NotEmpty(t, result.Findings)
	for _, f := range result.Findings {
		assert.Equal(t, f.Segment.Text, string([]rune(result.Article.Content)[f.Segment.Start:f.Segment.End]))
	}
	assert.True(t, strings.HasPrefix(result.Summary, "Resumo do modelo."), result.Summary)
}

func TestAnalyzeArticleErrors(t *testing.T) {
	offTopic := strings.Repeat("O futebol é um esporte popular no Brasil. ", 5)
	fetcher := &fakeFetcher{articles: map[string]*models.Article{
		"Futebol":  {Title: "Futebol", Content: offTopic},
		"Chatbot":  {Title: "Chatbot", Content: "Um chatbot conversa."},
		"Robótica": {Title: "Robótica", Content: articleBody},
	}}
	svc := newService(t, Config{Fetcher: fetcher})

	tests := []struct {
		name    string
		title   string
		wantErr error
	}{
		{name: "invalid title", title: "x", wantErr: wikipedia.ErrInvalidTitle},
		{name: "forbidden characters", title: "IA <script>", wantErr: wikipedia.ErrInvalidTitle},
		{name: "not found", title: "Inexistente", wantErr: wikipedia.ErrNotFound},
		{name: "not AI related", title: "Futebol", wantErr: wikipedia.ErrNotAIRelated},
		{name: "too short", title: "Chatbot", wantErr: wikipedia.ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AnalyzeArticle(context.Background(), "", tt.title, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AnalyzeArticle(%q) error = %v, want %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeArticleWithoutFetcher(t *testing.T) {
	svc := newService(t, Config{})
	assert.False(t, svc.HasFetcher())

	_, err := svc.AnalyzeArticle(context.Background(), "", "Inteligência artificial", false)
	assert.Error(t, err)
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name       string
		provider   llm.Provider
		wantSource string
		wantText   string
	}{
		{
			name:       "provider output",
			provider:   &fakeProvider{rewrite: "A IA pode afetar alguns empregos."},
			wantSource: RewriteSourceProvider,
			wantText:   "A IA pode afetar alguns empregos.",
		},
		{
			name:       "provider failure",
			provider:   &fakeProvider{rewriteErr: errors.New("boom")},
			wantSource: RewriteSourceFallback,
			wantText:   analyzer.FallbackRewrite(biasedClaim, models.TechnologicalDeterminism),
		},
		{
			name:       "blank provider output",
			provider:   &fakeProvider{rewrite: "   "},
			wantSource: RewriteSourceFallback,
			wantText:   analyzer.FallbackRewrite(biasedClaim, models.TechnologicalDeterminism),
		},
		{
			name:       "no provider",
			wantSource: RewriteSourceFallback,
			wantText:   analyzer.FallbackRewrite(biasedClaim, models.TechnologicalDeterminism),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			svc := newService(t, Config{Provider: tt.provider, Metrics: m})

			out, source := svc.Rewrite(context.Background(), biasedClaim, models.TechnologicalDeterminism, "")
			assert.Equal(t, tt.wantSource, source)
			assert.Equal(t, tt.wantText, out)

			failures := counterValue(t, reg, "biasanalyzer_capability_failures_total", metrics.CapabilityRewriter)
			if tt.provider != nil && tt.wantSource == RewriteSourceFallback {
				assert.Equal(t, 1.0, failures)
			} else {
				assert.Equal(t, 0.0, failures)
			}
		})
	}
}
