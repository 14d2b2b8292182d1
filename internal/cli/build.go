package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/config"
	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/llm"
	"github.com/zombar/biasanalyzer/internal/nlp"
	"github.com/zombar/biasanalyzer/internal/ollama"
	"github.com/zombar/biasanalyzer/internal/service"
	"github.com/zombar/biasanalyzer/internal/wikipedia"
)

// buildService wires the analyzer and its optional capabilities from cfg.
// Unreachable capabilities are logged and left out; a bad lexicon file is
// an error.
func buildService(cfg config.Config, logger *slog.Logger) (*service.Service, error) {
	caps := analyzer.Capabilities{Logger: logger}

	if cfg.Lexicon != "" {
		lex, err := lexicon.Load(cfg.Lexicon)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		caps.Lexicon = lex
	}

	if cfg.AnnotatorURL != "" {
		ann, err := nlp.NewHTTPAnnotator(cfg.AnnotatorURL)
		if err != nil {
			logger.Warn("annotator unavailable, using surface features only", "error", err, "url", cfg.AnnotatorURL)
		} else {
			caps.Annotator = ann
		}
	}

	if cfg.Ollama.Enabled {
		client, err := ollama.New(cfg.Ollama.URL, cfg.Ollama.Model)
		if err != nil {
			logger.Warn("Ollama unavailable, using lexicon sentiment", "error", err, "url", cfg.Ollama.URL)
		} else {
			caps.Sentiment = client
		}
	}

	provider, err := llm.NewProvider(llmConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	if provider != nil {
		caps.Rewriter = provider
		logger.Debug("LLM provider initialized", "provider", provider.Name())
	}

	a, err := analyzer.NewWithCapabilities(caps)
	if err != nil {
		return nil, err
	}

	wiki, err := wikipedia.New(cfg.WikipediaURL, wikipedia.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return service.New(service.Config{
		Analyzer: a,
		Fetcher:  wiki,
		Provider: provider,
		Logger:   logger,
	})
}

// llmConfig maps the CLI settings onto the provider configuration. The
// Ollama provider shares the sentiment endpoint and model unless overridden.
func llmConfig(cfg config.Config) llm.Config {
	out := llm.DefaultConfig()
	out.Provider = cfg.LLM.Provider
	out.Model = cfg.LLM.Model
	out.APIKey = cfg.LLM.APIKey
	out.BaseURL = cfg.LLM.BaseURL
	if cfg.LLM.Timeout > 0 {
		out.Timeout = cfg.LLM.Timeout
	}
	if strings.EqualFold(strings.TrimSpace(cfg.LLM.Provider), "ollama") {
		if out.BaseURL == "" {
			out.BaseURL = cfg.Ollama.URL
		}
		if out.Model == "" {
			out.Model = cfg.Ollama.Model
		}
	}
	return out
}
