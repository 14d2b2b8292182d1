// Package llm generates neutral rewrites and document summaries with a
// language model provider.
package llm

import (
	"context"
	"errors"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/models"
)

// Generation settings for the two prompt kinds
const (
	RewriteTemperature = 0.3
	RewriteMaxTokens   = 500
	SummaryTemperature = 0.4
	SummaryMaxTokens   = 400
)

var (
	// ErrUnknownProvider is returned by NewProvider for unsupported names
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrMissingAPIKey is returned when a hosted provider has no credentials
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("empty response from model")
)

// Provider defines the interface for LLM providers. Every provider is also an
// analyzer.Rewriter.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rewrite returns a neutral version of a biased segment
	Rewrite(ctx context.Context, req analyzer.RewriteRequest) (string, error)

	// Summarize writes an executive summary of a document's bias report
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

var _ analyzer.Rewriter = Provider(nil)

// SummaryRequest is the input of a document summary
type SummaryRequest struct {
	Title  string
	Report models.Report
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama" or "" for none
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int
}

// DefaultConfig returns the defaults; no provider is enabled
func DefaultConfig() Config {
	return Config{Timeout: 60}
}
