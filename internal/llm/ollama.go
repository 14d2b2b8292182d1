package llm

import (
	"context"
	"fmt"

	"github.com/zombar/biasanalyzer/internal/analyzer"
	"github.com/zombar/biasanalyzer/internal/ollama"
)

// OllamaProvider implements the Provider interface for local Ollama models
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a provider talking to the Ollama server at
// config.BaseURL
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	client, err := ollama.New(config.BaseURL, config.Model)
	if err != nil {
		return nil, err
	}
	return &OllamaProvider{client: client}, nil
}

// NewOllamaProviderFromClient wraps an existing client
func NewOllamaProviderFromClient(client *ollama.Client) *OllamaProvider {
	return &OllamaProvider{client: client}
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Client returns the underlying Ollama client
func (p *OllamaProvider) Client() *ollama.Client {
	return p.client
}

// Rewrite returns a neutral version of a biased segment
func (p *OllamaProvider) Rewrite(ctx context.Context, req analyzer.RewriteRequest) (string, error) {
	out, err := p.client.Generate(ctx, ollama.Request{
		System:      RewriteSystemPrompt,
		Prompt:      BuildRewritePrompt(req.Text, req.Category, req.Explanation),
		Temperature: RewriteTemperature,
		MaxTokens:   RewriteMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if out = CleanRewrite(out); out == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return out, nil
}

// Summarize writes an executive summary of a bias report
func (p *OllamaProvider) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	out, err := p.client.Generate(ctx, ollama.Request{
		System:      SummarySystemPrompt,
		Prompt:      BuildSummaryPrompt(req.Title, req.Report),
		Temperature: SummaryTemperature,
		MaxTokens:   SummaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return out, nil
}
