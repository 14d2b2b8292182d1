package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/zombar/biasanalyzer/internal/analyzer"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Rewrite returns a neutral version of a biased segment
func (p *OpenAIProvider) Rewrite(ctx context.Context, req analyzer.RewriteRequest) (string, error) {
	out, err := p.complete(ctx, RewriteSystemPrompt,
		BuildRewritePrompt(req.Text, req.Category, req.Explanation),
		RewriteTemperature, RewriteMaxTokens)
	if err != nil {
		return "", err
	}
	return CleanRewrite(out), nil
}

// Summarize writes an executive summary of a bias report
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	return p.complete(ctx, SummarySystemPrompt, BuildSummaryPrompt(req.Title, req.Report),
		SummaryTemperature, SummaryMaxTokens)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, prompt string, temperature float32, maxTokens int) (string, error) {
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return out, nil
}
