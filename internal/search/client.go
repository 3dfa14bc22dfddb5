package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skknicheck/internal/logging"
	"skknicheck/internal/ratelimit"
)

const (
	defaultBaseURL        = "https://serpapi.com"
	defaultUserAgent      = "Mozilla/5.0 (SKKNI-Checker)"
	defaultLanguage       = "id"
	defaultResultCount    = 10
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1500 * time.Millisecond
	defaultAttemptTimeout = 30 * time.Second
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Searcher is the lookup surface consumed by the reconciler.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Config captures the SerpAPI connection settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Language    string
	ResultCount int
	UserAgent   string
}

// Client queries SerpAPI with bounded retries and a per-attempt deadline.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	attemptTimeout   time.Duration
	sleeper          func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the attempt budget (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the linear backoff base (defaults to 1.5s).
func WithRetryBackoff(base time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = base
	}
}

// WithAttemptTimeout overrides the per-attempt deadline (defaults to 30s).
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.attemptTimeout = timeout
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithLogger attaches a logger for attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a SerpAPI client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("serpapi: api key is required")
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("serpapi: parse base url: %w", err)
	}
	cfg.Language = strings.TrimSpace(cfg.Language)
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = defaultResultCount
	}
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		attemptTimeout:   defaultAttemptTimeout,
		sleeper:          ratelimit.SleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "serpapi")
	return client, nil
}

// HTTPStatusError reports a non-2xx response from the search service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("serpapi: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ExhaustedError is returned once every attempt has failed. It wraps the
// last attempt's error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("serpapi: failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Search runs the query, retrying transport failures, non-2xx responses and
// undecodable bodies. Backoff is linear (base × attempt) and is only slept
// between attempts.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("serpapi: query is required")
	}
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		results, err := c.searchOnce(ctx, query)
		if err == nil {
			c.logger.Debug("search attempt succeeded",
				logging.Int("attempt", attempt),
				logging.Int("results", len(results)),
			)
			return results, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if attempt == attempts {
			break
		}
		delay := c.backoffDelay(attempt)
		logging.WarnWithContext(c.logger, "search attempt failed, retrying", "search_retry",
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("backoff", delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check SerpAPI quota and network connectivity"),
			logging.String(logging.FieldImpact, "lookup delayed"),
		)
		if err := c.sleeper(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]Result, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "search.json")
	if err != nil {
		return nil, fmt.Errorf("serpapi: build url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("hl", c.cfg.Language)
	params.Set("num", strconv.Itoa(c.cfg.ResultCount))

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request failed (timeout=%s): %w", c.attemptTimeout, redactKey(err, c.cfg.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("serpapi: decode response: %w", err)
	}
	if payload.noResults() {
		return []Result{}, nil
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return nil, fmt.Errorf("serpapi: api error: %s", msg)
	}
	results := make([]Result, 0, len(payload.OrganicResults))
	for _, hit := range payload.OrganicResults {
		results = append(results, Result{Title: hit.Title, Snippet: hit.Snippet})
	}
	return results, nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.retryBaseDelay <= 0 || attempt <= 0 {
		return 0
	}
	return c.retryBaseDelay * time.Duration(attempt)
}

// redactKey strips the API key from url.Error messages, which embed the full
// request URL.
func redactKey(err error, key string) error {
	if err == nil || key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = strings.ReplaceAll(urlErr.URL, key, "REDACTED")
		return &redacted
	}
	return err
}

type searchResponse struct {
	OrganicResults    []Result `json:"organic_results"`
	Error             string   `json:"error"`
	SearchInformation struct {
		OrganicResultsState string `json:"organic_results_state"`
	} `json:"search_information"`
}

// SerpAPI reports a query without hits as a 200 carrying an "error" string.
const noResultsMessage = "hasn't returned any results"

// noResults reports whether the engine answered the query with zero hits,
// which is a valid empty result rather than a failed attempt.
func (r searchResponse) noResults() bool {
	if len(r.OrganicResults) > 0 {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(r.SearchInformation.OrganicResultsState), "Fully empty") {
		return true
	}
	return strings.Contains(r.Error, noResultsMessage)
}
