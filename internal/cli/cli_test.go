package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/config"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/render"
	"github.com/zombar/biasanalyzer/internal/service"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

const biasedClaim = "A IA certamente vai dominar tudo e substituirá todos os empregos."

var articleBody = "A inteligência artificial é um campo da ciência da computação dedicado a sistemas que aprendem com dados. " +
	biasedClaim + " Pesquisadores estudam seus efeitos na sociedade."

type result struct {
	stdout string
	stderr string
	err    error
}

// newTestApp returns an app whose default config file lives in a temp dir
func newTestApp(t *testing.T) *app {
	t.Helper()
	return &app{
		configPath: filepath.Join(t.TempDir(), "biasctl", "config.yaml"),
		newService: buildService,
	}
}

func run(t *testing.T, a *app, stdin string, args ...string) result {
	t.Helper()
	if a == nil {
		a = newTestApp(t)
	}
	root := newRootCmd(a)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeStdin(t *testing.T) {
	res := run(t, nil, biasedClaim, "analyze", "--format", "json")
	require.NoError(t, res.err, res.stderr)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "-", doc.Source)
	require.Len(t, doc.Analysis.Findings, 1)
	f := doc.Analysis.Findings[0]
	assert.Equal(t, models.TechnologicalDeterminism, f.Category)
	assert.Equal(t, biasedClaim, string([]rune(biasedClaim)[f.Segment.Start:f.Segment.End]))
	assert.Equal(t, models.StatusBiasDetected, doc.Analysis.Report.Status)
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "noticia.txt", biasedClaim)
	second := writeFile(t, dir, "notas.md", "# Notas\n\n"+articleBody)

	res := run(t, nil, "", "analyze", "-f", "json", "--jobs", "2", first, second)
	require.NoError(t, res.err, res.stderr)

	var docs []render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].Source)
	assert.Equal(t, second, docs[1].Source)
	for _, d := range docs {
		assert.Empty(t, d.Error)
		assert.NotEmpty(t, d.Analysis.Findings)
	}
}

func TestAnalyzeReportsUnreadableInputs(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.txt", biasedClaim)
	fakePDF := writeFile(t, dir, "scan.pdf", "not a pdf at all")
	empty := writeFile(t, dir, "empty.txt", "  \n")
	latin1 := writeFile(t, dir, "latin1.txt", "cora\xe7\xe3o")
	missing := filepath.Join(dir, "missing.txt")

	res := run(t, nil, "", "analyze", "-f", "json", good, fakePDF, empty, latin1, missing)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "4 of 5 inputs could not be analyzed")

	var docs []render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &docs))
	require.Len(t, docs, 5)
	assert.Empty(t, docs[0].Error)
	assert.Len(t, docs[0].Analysis.Findings, 1)
	assert.Contains(t, docs[1].Error, "open pdf")
	assert.Equal(t, errEmptyInput.Error(), docs[2].Error)
	assert.Equal(t, errInvalidUTF8.Error(), docs[3].Error)
	assert.NotEmpty(t, docs[4].Error)
}

func TestAnalyzeStdinOnlyOnce(t *testing.T) {
	res := run(t, nil, biasedClaim, "analyze", "-", "-")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "only be analyzed once")
}

func TestAnalyzeInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"zero jobs", []string{"analyze", "--jobs", "0"}, config.ErrInvalidJobs},
		{"unknown format", []string{"analyze", "-f", "html"}, config.ErrInvalidFormat},
		{"unknown provider", []string{"analyze", "--llm-provider", "anthropic"}, config.ErrInvalidProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, biasedClaim, tt.args...)
			assert.ErrorIs(t, res.err, tt.wantErr)
		})
	}
}

func TestConfigPrecedence(t *testing.T) {
	writeConfig := func(t *testing.T, a *app) {
		require.NoError(t, os.MkdirAll(filepath.Dir(a.configPath), 0o755))
		require.NoError(t, os.WriteFile(a.configPath, []byte("format: markdown\n"), 0o600))
	}

	t.Run("defaults", func(t *testing.T) {
		res := run(t, nil, biasedClaim, "analyze")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, "== - =="), res.stdout)
	})

	t.Run("config file over defaults", func(t *testing.T) {
		a := newTestApp(t)
		writeConfig(t, a)
		res := run(t, a, biasedClaim, "analyze")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "# Bias Analysis Report")
	})

	t.Run("environment over config file", func(t *testing.T) {
		t.Setenv("BIASCTL_FORMAT", "json")
		a := newTestApp(t)
		writeConfig(t, a)
		res := run(t, a, biasedClaim, "analyze")
		require.NoError(t, res.err)
		assert.True(t, json.Valid([]byte(res.stdout)), res.stdout)
	})

	t.Run("flag over environment", func(t *testing.T) {
		t.Setenv("BIASCTL_FORMAT", "json")
		a := newTestApp(t)
		writeConfig(t, a)
		res := run(t, a, biasedClaim, "analyze", "--format", "table")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.stdout, "== - =="), res.stdout)
	})
}

func TestNestedEnvironmentKeys(t *testing.T) {
	t.Setenv("BIASCTL_LLM_PROVIDER", "ollama")
	t.Setenv("BIASCTL_OLLAMA_MODEL", "qwen2.5")
	t.Setenv("OPENAI_API_KEY", "sk-test-secret")

	res := run(t, nil, "", "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "provider: ollama")
	assert.Contains(t, res.stdout, "model: qwen2.5")
	assert.NotContains(t, res.stdout, "sk-test-secret")
	assert.Contains(t, res.stdout, "********")
	assert.Contains(t, res.stderr, "No configuration file found")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom", "config.yaml")

	res := run(t, nil, "", "config", "init", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	res = run(t, nil, "", "config", "init", "--config", path)
	assert.ErrorIs(t, res.err, config.ErrConfigExists)

	res = run(t, nil, "", "config", "show", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "format: table")
	assert.Contains(t, res.stderr, "Configuration file: "+path)
}

func TestMissingExplicitConfig(t *testing.T) {
	res := run(t, nil, "", "config", "show", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, res.err)
}

func TestRewrite(t *testing.T) {
	t.Run("local fallback", func(t *testing.T) {
		res := run(t, nil, "", "rewrite", "--category", "missing_counterpoint", "Ele sempre acerta e nunca erra.")
		require.NoError(t, res.err)
		assert.Equal(t, "Ele frequentemente acerta e raramente erra.\n", res.stdout)
	})

	t.Run("json output from stdin", func(t *testing.T) {
		res := run(t, nil, "Ele sempre acerta e nunca erra.\n", "rewrite", "-c", "missing_counterpoint", "-f", "json", "-")
		require.NoError(t, res.err)

		var out rewriteResult
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
		assert.Equal(t, "Ele sempre acerta e nunca erra.", out.Original)
		assert.Equal(t, "Ele frequentemente acerta e raramente erra.", out.Rewrite)
		assert.Equal(t, models.MissingCounterpoint, out.Category)
		assert.Equal(t, service.RewriteSourceFallback, out.Source)
	})

	t.Run("unknown category", func(t *testing.T) {
		res := run(t, nil, "", "rewrite", "--category", "propaganda", "texto")
		assert.Error(t, res.err)
	})

	t.Run("category is required", func(t *testing.T) {
		res := run(t, nil, "", "rewrite", "texto")
		assert.Error(t, res.err)
	})
}

type fakeFetcher struct {
	articles map[string]*models.Article
}

func (f fakeFetcher) Fetch(_ context.Context, title string) (*models.Article, error) {
	a, ok := f.articles[title]
	if !ok {
		return nil, wikipedia.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func articleApp(t *testing.T) *app {
	a := newTestApp(t)
	a.newService = func(cfg config.Config, logger *slog.Logger) (*service.Service, error) {
		return service.New(service.Config{
			Analyzer: analyzer.New(),
			Fetcher: fakeFetcher{articles: map[string]*models.Article{
				"Inteligência artificial": {
					Title:     "Inteligência artificial",
					Content:   articleBody,
					URL:       "https://pt.wikipedia.org/wiki/Intelig%C3%AAncia_artificial",
					FetchedAt: time.Now(),
				},
			}},
			Logger: logger,
		})
	}
	return a
}

func TestArticle(t *testing.T) {
	res := run(t, articleApp(t), "", "article", "-f", "json", "Inteligência", "artificial")
	require.NoError(t, res.err, res.stderr)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "Inteligência artificial", doc.Source)
	assert.Contains(t, doc.URL, "pt.wikipedia.org")
	assert.NotEmpty(t, doc.Analysis.Findings)
	assert.NotEmpty(t, doc.Summary)
}

func TestArticleErrors(t *testing.T) {
	res := run(t, articleApp(t), "", "article", "Inexistente")
	assert.ErrorIs(t, res.err, wikipedia.ErrNotFound)

	res = run(t, articleApp(t), "", "article")
	assert.Error(t, res.err)
}

func TestVersion(t *testing.T) {
	res := run(t, nil, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "biasctl v"+Version+"\n", res.stdout)
}

func TestLLMConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "Ollama"

	got := llmConfig(cfg)
	assert.Equal(t, cfg.Ollama.URL, got.BaseURL)
	assert.Equal(t, cfg.Ollama.Model, got.Model)
	assert.Equal(t, config.DefaultLLMTimeout, got.Timeout)

	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	got = llmConfig(cfg)
	assert.Empty(t, got.BaseURL)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestBuildServiceBadLexicon(t *testing.T) {
	cfg := config.Default()
	cfg.Lexicon = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := buildService(cfg, slog.Default())
	assert.Error(t, err)
}
