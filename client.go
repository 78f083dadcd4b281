// Package kiteconnect is a Go client for the Zerodha KiteConnect v3
// brokerage API: an authenticated HTTP request pipeline, category-based
// rate limiting, exponential-backoff retries, historical-candle chunk
// planning, a streaming instruments-CSV ingester, and a polymorphic candle
// decoder. Streaming (websocket) market data, on-disk caching, and CLI
// front-ends are out of scope for this package.
package kiteconnect

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
	"github.com/sawpanic/kiteconnect-go/internal/net/retry"
)

const defaultBaseURL = "https://api.kite.trade"

// SessionExpiryHook is invoked when a response classifies as KindToken,
// letting the caller trigger a fresh login flow.
type SessionExpiryHook func()

// Config configures a Client at construction time: a flat options bag
// with NewClient filling in defaults for zero fields.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	RetryPolicy retry.Policy
	RateLimits  map[ratelimit.Category]ratelimit.Limits
	Logger      *zerolog.Logger
	Metrics     *Metrics
	DisableRateLimit bool
}

// Client is the single entry point for all KiteConnect API calls. All
// exported state is protected by mu; a Client is safe for concurrent use.
type Client struct {
	mu                sync.RWMutex
	apiKey            string
	accessToken       string
	sessionExpiryHook SessionExpiryHook

	httpClient  *http.Client
	baseURL     string
	limiter     *ratelimit.Limiter
	retryPolicy retry.Policy
	logger      zerolog.Logger
	metrics     *Metrics

	instrumentsCache *instrumentsCache
}

// SetInstrumentsTTL overrides the default 10-minute TTL of the in-process
// instrument master list cache.
func (c *Client) SetInstrumentsTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instrumentsCache = newInstrumentsCache(ttl)
}

// NewClient constructs a Client for the given API key. Config fields left
// at their zero value fall back to the package defaults: the production
// base URL, a 30-second HTTP timeout, the broker's published rate limits,
// and the default retry policy.
func NewClient(apiKey string, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	if config.RetryPolicy == (retry.Policy{}) {
		config.RetryPolicy = retry.DefaultPolicy()
	}
	if config.RateLimits == nil {
		config.RateLimits = ratelimit.DefaultLimits()
	}
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}

	c := &Client{
		apiKey:      apiKey,
		httpClient:  config.HTTPClient,
		baseURL:     config.BaseURL,
		limiter:     ratelimit.New(config.RateLimits),
		retryPolicy: config.RetryPolicy,
		logger:      logger,
		metrics:     config.Metrics,
		instrumentsCache: newInstrumentsCache(0),
	}
	if config.DisableRateLimit {
		c.limiter.Disable()
	}
	return c
}

// SetAccessToken stores the access token obtained from a completed login
// handshake (see Session.GenerateSession). Safe for concurrent use.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

// SetAPIKey overrides the API key used for subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// SetTimeout adjusts the underlying HTTP client's timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient.Timeout = d
}

// SetSessionExpiryHook registers a callback invoked each time a
// dispatched request's error classifies as KindToken, so the caller can
// trigger a fresh login flow.
func (c *Client) SetSessionExpiryHook(hook SessionExpiryHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionExpiryHook = hook
}

// SetLogger replaces the client's structured logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// SetMetrics attaches a Metrics instance; pass the result of NewMetrics
// with whichever prometheus.Registerer the caller wants these collectors
// registered against.
func (c *Client) SetMetrics(m *Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

func (c *Client) credentials() (apiKey, accessToken string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey, c.accessToken
}

func (c *Client) runSessionExpiryHook() {
	c.mu.RLock()
	hook := c.sessionExpiryHook
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

// Stats returns a point-in-time rate-limit snapshot for the given
// category, for diagnostics and tests.
func (c *Client) Stats(category ratelimit.Category) (ratelimit.Stats, bool) {
	return c.limiter.Stats(category)
}
