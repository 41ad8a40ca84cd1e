// Package client provides the SportMonks HTTP client with retries,
// optional Redis page caching and rate limit tracking.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/foot-player/pkg/cache"
	"github.com/Sternrassler/foot-player/pkg/pagination"
	"github.com/Sternrassler/foot-player/pkg/ratelimit"
	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportmonks_requests_total",
		Help: "Total SportMonks requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportmonks_request_duration_seconds",
		Help:    "SportMonks request duration in seconds by resource",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportmonks_errors_total",
		Help: "Total SportMonks request errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the SportMonks football API root.
const DefaultBaseURL = "https://api.sportmonks.com/v3/football"

// Client fetches SportMonks resources.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	config      Config
	retry       RetryConfig
	redact      redactor
	cache       *cache.Manager
	rateLimiter *ratelimit.Tracker
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root; resource paths are appended to it.
	BaseURL string

	// Token is sent as the api_token query parameter (REQUIRED).
	Token string

	// Timeout bounds each attempt.
	Timeout time.Duration

	// Retry
	MaxAttempts int
	BackoffStep time.Duration

	// RequestInterval is slept before every attempt. 0 disables it.
	RequestInterval time.Duration

	// Redis enables the page cache and rate limit tracking when set.
	Redis    *redis.Client
	CacheTTL time.Duration

	// HTTPClient replaces the default client (Timeout is then ignored).
	HTTPClient *http.Client
}

// DefaultConfig returns the default configuration for token.
func DefaultConfig(token string) Config {
	retry := DefaultRetryConfig()
	return Config{
		BaseURL:         DefaultBaseURL,
		Token:           token,
		Timeout:         30 * time.Second,
		MaxAttempts:     retry.MaxAttempts,
		BackoffStep:     retry.BackoffStep,
		RequestInterval: 250 * time.Millisecond,
		CacheTTL:        cache.DefaultTTL,
	}
}

// New creates a new SportMonks client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("api token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max_attempts must be >= 1 (got %d)", cfg.MaxAttempts)
	}
	if cfg.BackoffStep < 0 || cfg.RequestInterval < 0 {
		return nil, fmt.Errorf("backoff step and request interval must not be negative")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := log.With().Str("component", "sportmonks-client").Logger()

	c := &Client{
		httpClient: httpClient,
		baseURL:    base,
		config:     cfg,
		retry:      RetryConfig{MaxAttempts: cfg.MaxAttempts, BackoffStep: cfg.BackoffStep},
		redact:     redactor(cfg.Token),
		logger:     logger,
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return c, nil
}

// FetchPage requests one page of resource and decodes its envelope.
func (c *Client) FetchPage(ctx context.Context, resource string, params url.Values, page int) (*pagination.Envelope, error) {
	body, cached, err := c.get(ctx, resource, params, page)
	if err != nil {
		return nil, err
	}

	env, err := pagination.Decode(resource, page, body)
	if err != nil {
		errorsTotal.WithLabelValues("decode").Inc()
		return nil, err
	}
	if !cached {
		c.trackRateLimit(ctx, resource, env.RateLimit)
	}

	c.logger.Debug().
		Str("resource", resource).
		Int("page", page).
		Int("records", len(env.Data)).
		Msg("Page fetched")

	return env, nil
}

// Iterate returns a lazy iterator over every record of resource. The
// page query parameter, if set, selects the first page.
func (c *Client) Iterate(ctx context.Context, resource string, params url.Values) *pagination.Iterator {
	params = cloneValues(params)
	start := 1
	if p, err := strconv.Atoi(params.Get("page")); err == nil && p > 0 {
		start = p
	}
	params.Del("page")

	return pagination.NewIterator(ctx, start, func(ctx context.Context, page int) (*pagination.Envelope, error) {
		return c.FetchPage(ctx, resource, params, page)
	})
}

// Open implements pagination.Opener.
func (c *Client) Open(ctx context.Context, req pagination.Request) *pagination.Iterator {
	return c.Iterate(ctx, req.Path, req.Params)
}

// GetJSON fetches a single document and decodes the whole body into target.
func (c *Client) GetJSON(ctx context.Context, resource string, params url.Values, target any) error {
	body, cached, err := c.get(ctx, resource, params, 0)
	if err != nil {
		return err
	}

	var meta struct {
		RateLimit json.RawMessage `json:"rate_limit"`
	}
	if err := sonic.Unmarshal(body, &meta); err != nil {
		errorsTotal.WithLabelValues("decode").Inc()
		return &pagination.DecodeError{Resource: resource, Err: err}
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		errorsTotal.WithLabelValues("decode").Inc()
		return &pagination.DecodeError{Resource: resource, Err: err}
	}
	if !cached {
		c.trackRateLimit(ctx, resource, meta.RateLimit)
	}
	return nil
}

// get returns the body of a successful response, from cache when possible.
// cached reports a cache hit; its rate_limit block is stale and must not be
// tracked.
func (c *Client) get(ctx context.Context, resource string, params url.Values, page int) (body []byte, cached bool, err error) {
	resource = strings.Trim(resource, "/")
	label := ratelimit.ResourceKey(resource)

	cacheKey := cache.Key{Resource: resource, Params: params, Page: page}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("resource", resource).Int("page", page).Msg("Cache hit")
			return entry.Body, true, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Cache get error")
		}
	}

	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx, resource)
		if err != nil {
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Rate limit check failed")
		} else if !allowed {
			requestsTotal.WithLabelValues(label, "rate_limited").Inc()
			return nil, false, fmt.Errorf("%s: %w", resource, ErrRateLimited)
		}
	}

	reqURL := c.buildURL(resource, params, page)

	var (
		header     http.Header
		lastStatus int
		lastBody   []byte
	)

	attempts, err := retryWithBackoff(ctx, c.retry, c.logger.With().Str("resource", resource).Int("page", page).Logger(), func(attempt int) (ErrorClass, error) {
		if err := sleep(ctx, c.config.RequestInterval); err != nil {
			return ErrorClassNetwork, err
		}

		status, respBody, respHeader, err := c.do(ctx, reqURL, label)
		lastStatus, lastBody = status, respBody
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(label, "network_error").Inc()
			return ErrorClassNetwork, c.redact.RedactErr(err)
		}

		requestsTotal.WithLabelValues(label, strconv.Itoa(status)).Inc()
		if status >= 400 {
			class := classifyStatus(status)
			errorsTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Str("resource", resource).
				Int("page", page).
				Int("status", status).
				Int("attempt", attempt).
				Str("error_class", string(class)).
				Msg("SportMonks request error")
			return class, fmt.Errorf("unexpected status %d", status)
		}

		body, header = respBody, respHeader
		return "", nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%s: %w", resource, ctx.Err())
		}
		return nil, false, &RequestFailedError{
			Resource:   resource,
			Page:       page,
			StatusCode: lastStatus,
			Body:       truncate(c.redact.Redact(string(lastBody)), maxErrorBody),
			Attempts:   attempts,
			Err:        err,
		}
	}

	if c.cache != nil {
		entry := cache.NewEntry(body, http.StatusOK, header, c.config.CacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Failed to cache page")
		}
	}

	return body, false, nil
}

// do performs one GET and reads the whole body. A status code is returned
// whenever a response arrived.
func (c *Client) do(ctx context.Context, reqURL, label string) (int, []byte, http.Header, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}

func (c *Client) buildURL(resource string, params url.Values, page int) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Trim(resource, "/")

	q := cloneValues(params)
	q.Del("page")
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	q.Set(cache.TokenParam, c.config.Token)
	u.RawQuery = q.Encode()

	return u.String()
}

func (c *Client) trackRateLimit(ctx context.Context, resource string, raw json.RawMessage) {
	if c.rateLimiter == nil || len(raw) == 0 {
		return
	}
	if err := c.rateLimiter.Update(ctx, resource, raw); err != nil {
		c.logger.Warn().Err(err).Str("resource", resource).Msg("Failed to update rate limit state")
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
