package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAnnotatorTimeout bounds a single annotation request
const DefaultAnnotatorTimeout = 30 * time.Second

// HTTPAnnotator calls an annotation sidecar (for example a small spaCy
// service) that accepts {"text": "..."} and answers {"sentences": [...]}.
type HTTPAnnotator struct {
	endpoint string
	client   *http.Client
}

type annotateRequest struct {
	Text string `json:"text"`
}

type annotateResponse struct {
	Sentences []Sentence `json:"sentences"`
}

// NewHTTPAnnotator creates an annotator for the given endpoint URL
func NewHTTPAnnotator(endpoint string) (*HTTPAnnotator, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid annotator URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid annotator URL scheme %q", u.Scheme)
	}
	return &HTTPAnnotator{
		endpoint: u.String(),
		client:   &http.Client{Timeout: DefaultAnnotatorTimeout},
	}, nil
}

// Annotate implements Annotator
func (a *HTTPAnnotator) Annotate(ctx context.Context, text string) ([]Sentence, error) {
	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("annotator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode annotation response: %w", err)
	}
	return out.Sentences, nil
}
