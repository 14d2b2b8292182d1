// Package wikipedia fetches encyclopedia articles for bias analysis through
// the MediaWiki action API.
package wikipedia

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
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/zombar/biasanalyzer/internal/metrics"
	"github.com/zombar/biasanalyzer/internal/models"
)

const (
	DefaultAPIURL    = "https://pt.wikipedia.org/w/api.php"
	DefaultUserAgent = "biasanalyzer/1.0 (https://github.com/zombar/biasanalyzer)"
	DefaultCacheTTL  = time.Hour

	// MinContentLength is the shortest normalized article, in characters,
	// accepted for analysis
	MinContentLength = 100
)

var (
	ErrNotFound     = errors.New("article not found")
	ErrInvalidTitle = errors.New("invalid article title")
	ErrNotAIRelated = errors.New("article is not related to artificial intelligence")
	ErrTooShort     = errors.New("article content is too short for analysis")
)

// Store persists fetched articles across restarts. GetArticle returns an
// error when the title is unknown.
type Store interface {
	GetArticle(ctx context.Context, title string) (*models.Article, error)
	SaveArticle(ctx context.Context, article *models.Article) error
}

// Client fetches and cleans articles. It is safe for concurrent use.
type Client struct {
	apiURL     string
	wikiURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	store      Store
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit limits API calls to rps requests per second
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCacheTTL sets how long fetched articles stay in memory
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = gocache.New(ttl, 2*ttl) }
}

// WithStore adds a persistent article store consulted before the API
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

// WithMetrics records fetch results
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API at apiURL (DefaultAPIURL when empty)
func New(apiURL string, opts ...Option) (*Client, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid wikipedia API URL %q", apiURL)
	}

	c := &Client{
		apiURL:     apiURL,
		wikiURL:    u.Scheme + "://" + u.Host + "/wiki/",
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 2),
		cache:      gocache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "wikipedia")
	return c, nil
}

func cacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Fetch returns the cleaned article best matching title. Lookups go through
// the memory cache, then the store, then the search and extracts APIs.
func (c *Client) Fetch(ctx context.Context, title string) (*models.Article, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %q", err, title)
	}
	key := cacheKey(title)

	if v, ok := c.cache.Get(key); ok {
		c.metrics.WikipediaRequest("cache_hit")
		article := *v.(*models.Article)
		return &article, nil
	}

	if c.store != nil {
		if article, err := c.store.GetArticle(ctx, strings.TrimSpace(title)); err == nil {
			c.metrics.WikipediaRequest("store_hit")
			c.cache.SetDefault(key, article)
			out := *article
			return &out, nil
		}
	}

	article, err := c.fetchRemote(ctx, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.metrics.WikipediaRequest("not_found")
		} else {
			c.metrics.WikipediaRequest("error")
		}
		return nil, err
	}
	c.metrics.WikipediaRequest("ok")

	c.cache.SetDefault(key, article)
	c.cache.SetDefault(cacheKey(article.Title), article)
	if c.store != nil {
		if err := c.store.SaveArticle(ctx, article); err != nil {
			c.logger.Warn("failed to persist article", "title", article.Title, "error", err)
		}
	}

	out := *article
	return &out, nil
}

func (c *Client) fetchRemote(ctx context.Context, title string) (*models.Article, error) {
	resolved, err := c.search(ctx, title)
	if err != nil {
		return nil, err
	}

	extract, err := c.extract(ctx, resolved)
	if err != nil {
		return nil, err
	}

	content := Clean(extract, c.logger)
	c.logger.Info("article fetched", "query", title, "title", resolved,
		"raw_chars", len(extract), "clean_chars", len(content))

	return &models.Article{
		Title:     resolved,
		Content:   content,
		URL:       c.wikiURL + strings.ReplaceAll(resolved, " ", "_"),
		FetchedAt: time.Now().UTC(),
	}, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// search resolves a free-form title to the best matching page title
func (c *Client) search(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"search"},
		"srsearch":    {title},
		"srlimit":     {"1"},
		"srnamespace": {"0"},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("search %q: %w", title, err)
	}
	if len(resp.Query.Search) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return resp.Query.Search[0].Title, nil
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract *string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// extract returns the full plain-text extract of a page
func (c *Client) extract(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":          {"query"},
		"format":          {"json"},
		"titles":          {title},
		"prop":            {"extracts"},
		"explaintext":     {"1"},
		"exsectionformat": {"plain"},
	}

	var resp extractResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("extract %q: %w", title, err)
	}
	for _, page := range resp.Query.Pages {
		if page.Extract != nil {
			return *page.Extract, nil
		}
	}
	return "", fmt.Errorf("%w: %q has no content", ErrNotFound, title)
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Prepare checks that an article can be analyzed and returns its normalized
// content: the article must be about AI and at least MinContentLength
// characters long once normalized.
func Prepare(article *models.Article) (string, error) {
	if !IsAIRelated(article.Title, article.Content) {
		return "", fmt.Errorf("%w: %q", ErrNotAIRelated, article.Title)
	}
	content := Normalize(article.Content)
	if utf8.RuneCountInString(content) < MinContentLength {
		return "", fmt.Errorf("%w: %q", ErrTooShort, article.Title)
	}
	return content, nil
}
