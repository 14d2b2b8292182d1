package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/models"
)

// NewProvider creates a new LLM provider based on configuration. An empty
// provider name disables generation and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		p, err := NewOllamaProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, ollama)", ErrUnknownProvider, config.Provider)
	}
}

// DocumentSummary returns the provider summary of a report, or the local
// fallback when the provider is nil or fails, followed by the metrics block
func DocumentSummary(ctx context.Context, p Provider, title string, report models.Report, logger *slog.Logger) string {
	if report.TotalFindings == 0 {
		return analyzer.FallbackSummary(title, report)
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := ""
	if p != nil {
		out, err := p.Summarize(ctx, SummaryRequest{Title: title, Report: report})
		if err != nil {
			logger.Warn("summary generation failed, using local fallback", "provider", p.Name(), "error", err)
		} else {
			base = out
		}
	}
	if strings.TrimSpace(base) == "" {
		base = analyzer.FallbackSummary(title, report)
	}
	return analyzer.Summarize(base, report)
}
