package kiteconnect

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
	"github.com/sawpanic/kiteconnect-go/internal/net/retry"
)

// FileConfig is the optional YAML-backed configuration document a caller
// may load to seed a Client's defaults. Nothing in this package requires a
// config file — NewClient works from Config alone.
type FileConfig struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Retry          RetryConfig   `yaml:"retry"`
	RateLimits     RateLimitYAML `yaml:"rate_limits"`
}

// RetryConfig mirrors retry.Policy in YAML-friendly form.
type RetryConfig struct {
	MaxRetries    int     `yaml:"max_retries"`
	BaseDelayMS   int     `yaml:"base_delay_ms"`
	MaxDelayMS    int     `yaml:"max_delay_ms"`
	Exponential   float64 `yaml:"exponential"`
	JitterFraction float64 `yaml:"jitter_fraction"`
}

// RateLimitYAML carries per-category overrides of the default rate limits.
type RateLimitYAML struct {
	QuotePerSecond      float64 `yaml:"quote_per_second"`
	HistoricalPerSecond float64 `yaml:"historical_per_second"`
	OrderPerSecond      float64 `yaml:"order_per_second"`
	OrderDailyLimit     int64   `yaml:"order_daily_limit"`
	StandardPerSecond   float64 `yaml:"standard_per_second"`
}

// LoadFileConfig reads and parses a YAML configuration file from path.
func LoadFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kiteconnect: reading config file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("kiteconnect: parsing config file: %w", err)
	}
	return &cfg, nil
}

// toRetryPolicy converts the YAML form to retry.Policy, filling in
// retry.DefaultPolicy() for any zero field.
func (c RetryConfig) toRetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if c.MaxRetries != 0 {
		p.MaxRetries = c.MaxRetries
	}
	if c.BaseDelayMS != 0 {
		p.BaseDelay = time.Duration(c.BaseDelayMS) * time.Millisecond
	}
	if c.MaxDelayMS != 0 {
		p.MaxDelay = time.Duration(c.MaxDelayMS) * time.Millisecond
	}
	if c.Exponential != 0 {
		p.Exponential = c.Exponential
	}
	if c.JitterFraction != 0 {
		p.Jitter = c.JitterFraction
	}
	return p
}

// toRateLimits converts the YAML overrides to a ratelimit.Limits map,
// falling back to ratelimit.DefaultLimits() for any category left at its
// zero value.
func (r RateLimitYAML) toRateLimits() map[ratelimit.Category]ratelimit.Limits {
	limits := ratelimit.DefaultLimits()
	if r.QuotePerSecond != 0 {
		l := limits[ratelimit.CategoryQuote]
		l.PerSecond = r.QuotePerSecond
		limits[ratelimit.CategoryQuote] = l
	}
	if r.HistoricalPerSecond != 0 {
		l := limits[ratelimit.CategoryHistorical]
		l.PerSecond = r.HistoricalPerSecond
		limits[ratelimit.CategoryHistorical] = l
	}
	if r.OrderPerSecond != 0 {
		l := limits[ratelimit.CategoryOrder]
		l.PerSecond = r.OrderPerSecond
		limits[ratelimit.CategoryOrder] = l
	}
	if r.OrderDailyLimit != 0 {
		l := limits[ratelimit.CategoryOrder]
		l.DailyLimit = r.OrderDailyLimit
		limits[ratelimit.CategoryOrder] = l
	}
	if r.StandardPerSecond != 0 {
		l := limits[ratelimit.CategoryStandard]
		l.PerSecond = r.StandardPerSecond
		limits[ratelimit.CategoryStandard] = l
	}
	return limits
}

// ToConfig converts the file-backed configuration into a Config suitable
// for NewClient, translating the YAML retry and rate-limit overrides into
// their runtime forms. The caller may still override individual fields
// (HTTPClient, Logger, Metrics, ...) on the returned Config before use.
func (f FileConfig) ToConfig() Config {
	cfg := Config{
		RetryPolicy: f.Retry.toRetryPolicy(),
		RateLimits:  f.RateLimits.toRateLimits(),
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.TimeoutSeconds != 0 {
		cfg.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	return cfg
}
