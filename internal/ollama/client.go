package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/zombar/biasanalyzer/internal/nlp"
)

const (
	DefaultURL     = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// ErrNoJSON is returned when a model response carries no JSON document
var ErrNoJSON = errors.New("no JSON object found in response")

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new Ollama client
func New(ollamaURL, model string) (*Client, error) {
	if ollamaURL == "" {
		ollamaURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}

	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid Ollama URL %q: scheme must be http or https", ollamaURL)
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "ollama"),
	}, nil
}

// Model returns the model used for generation
func (c *Client) Model() string {
	return c.model
}

// Ping checks that the server is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Heartbeat(ctx)
}

// Request is a single non-streaming generation
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSON        bool // constrain the output to a JSON document
}

// Generate runs one generation and returns the trimmed response text
func (c *Client) Generate(ctx context.Context, r Request) (string, error) {
	c.logger.Debug("sending request", "model", c.model, "timeout", c.timeout, "prompt_chars", len(r.Prompt))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: r.Prompt,
		System: r.System,
		Stream: new(bool), // false
	}
	options := map[string]any{}
	if r.Temperature > 0 {
		options["temperature"] = r.Temperature
	}
	if r.MaxTokens > 0 {
		options["num_predict"] = r.MaxTokens
	}
	if len(options) > 0 {
		req.Options = options
	}
	if r.JSON {
		req.Format = json.RawMessage(`"json"`)
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		c.logger.Warn("generation failed", "model", c.model, "error", err)
		return "", fmt.Errorf("generation failed: %w", err)
	}

	result := strings.TrimSpace(response.String())
	c.logger.Debug("response received", "chars", len(result))
	return result, nil
}

// GenerateResponse generates a response from the LLM with default options
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	return c.Generate(ctx, Request{Prompt: prompt})
}

const sentimentPrompt = `Classifique o sentimento da frase a seguir, escrita em português.

Responda SOMENTE com um objeto JSON no formato:
{"label": "positive" | "negative" | "neutral", "score": número entre 0.0 e 1.0}

O campo score indica a confiança na classificação.

Frase:
%s`

// Classify labels the sentiment of a sentence. It implements
// nlp.SentimentClassifier.
func (c *Client) Classify(ctx context.Context, text string) (nlp.Sentiment, error) {
	response, err := c.Generate(ctx, Request{
		Prompt:      fmt.Sprintf(sentimentPrompt, text),
		Temperature: 0.1,
		MaxTokens:   50,
		JSON:        true,
	})
	if err != nil {
		return nlp.Sentiment{}, err
	}

	var result nlp.Sentiment
	if err := extractJSON(response, &result); err != nil {
		return nlp.Sentiment{}, fmt.Errorf("failed to parse sentiment JSON: %w", err)
	}

	result.Label = strings.ToLower(strings.TrimSpace(result.Label))
	if result.Label == "neutral" || result.Label == "neutro" {
		// neutral sentences carry no polarity
		result.Score = 0
	}
	result.Score = min(max(result.Score, 0), 1)
	return result, nil
}

// extractJSON decodes the first JSON object embedded in a model response
func extractJSON(response string, v any) error {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(response[start:end+1]), v)
}
