// Package ratelimit implements the per-endpoint-class token buckets the
// KiteConnect client must honor: a map of golang.org/x/time/rate limiters
// keyed by category instead of by host, plus a daily counter per category.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Category partitions endpoints into the broker's published rate-limit
// classes: quote, historical, order, and everything else (standard).
type Category string

const (
	CategoryQuote      Category = "quote"
	CategoryHistorical Category = "historical"
	CategoryOrder      Category = "order"
	CategoryStandard   Category = "standard"
)

// Limits describes one category's caps. A zero DailyLimit means no daily
// cap is enforced for the category.
type Limits struct {
	PerSecond float64
	DailyLimit int64
}

// DefaultLimits returns the broker's published default caps.
func DefaultLimits() map[Category]Limits {
	return map[Category]Limits{
		CategoryQuote:      {PerSecond: 1},
		CategoryHistorical: {PerSecond: 3},
		CategoryOrder:      {PerSecond: 10, DailyLimit: 3000},
		CategoryStandard:   {PerSecond: 10},
	}
}

type bucket struct {
	limiter    *rate.Limiter
	dailyLimit int64
	dailyUsed  int64 // atomic
	dayStart   time.Time
	mu         sync.Mutex
}

// Limiter holds one token bucket per category, shared across all requests
// issued by a single Client. Acquire never holds a lock across the
// cooperative wait: the wait delay is computed by the underlying
// rate.Limiter, which itself only locks briefly per call.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[Category]*bucket
	disabled int32 // atomic bool
}

// New creates a Limiter with the given per-category limits.
func New(limits map[Category]Limits) *Limiter {
	l := &Limiter{buckets: make(map[Category]*bucket, len(limits))}
	for cat, lim := range limits {
		l.buckets[cat] = &bucket{
			limiter:    rate.NewLimiter(rate.Limit(lim.PerSecond), max(1, int(lim.PerSecond))),
			dailyLimit: lim.DailyLimit,
			dayStart:   time.Now().UTC(),
		}
	}
	return l
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Disable turns off all rate limiting; Acquire becomes a no-op. Tests use
// this to exercise request logic without waiting on real token buckets.
func (l *Limiter) Disable() { atomic.StoreInt32(&l.disabled, 1) }

// Enable re-enables rate limiting after a prior Disable.
func (l *Limiter) Enable() { atomic.StoreInt32(&l.disabled, 0) }

// ErrDailyLimitReached is returned by Acquire when a category's daily
// budget is exhausted; the caller fails immediately rather than blocking
// until a reset that may be hours away.
var ErrDailyLimitReached = fmt.Errorf("daily limit reached")

// Acquire blocks cooperatively until a token is available for the given
// category, or returns immediately with ErrDailyLimitReached if the
// category's daily cap (if any) is exhausted. It honors ctx cancellation.
func (l *Limiter) Acquire(ctx context.Context, category Category) error {
	if atomic.LoadInt32(&l.disabled) == 1 {
		return nil
	}

	l.mu.RLock()
	b, ok := l.buckets[category]
	l.mu.RUnlock()
	if !ok {
		// Unknown categories are not rate-limited at all.
		return nil
	}

	if b.dailyLimit > 0 {
		if err := b.checkAndConsumeDaily(); err != nil {
			return err
		}
	}

	return b.limiter.Wait(ctx)
}

func (b *bucket) checkAndConsumeDaily() error {
	b.mu.Lock()
	now := time.Now().UTC()
	if now.Format("2006-01-02") != b.dayStart.Format("2006-01-02") {
		atomic.StoreInt64(&b.dailyUsed, 0)
		b.dayStart = now
	}
	b.mu.Unlock()

	used := atomic.AddInt64(&b.dailyUsed, 1)
	if used > b.dailyLimit {
		atomic.AddInt64(&b.dailyUsed, -1)
		return ErrDailyLimitReached
	}
	return nil
}

// Stats is the read-only snapshot exposed by the limiter for diagnostics.
type Stats struct {
	Available     float64
	RequestsInDay int64
	DailyLimit    int64
}

// Stats returns a point-in-time snapshot for the given category.
func (l *Limiter) Stats(category Category) (Stats, bool) {
	l.mu.RLock()
	b, ok := l.buckets[category]
	l.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Available:     b.limiter.Tokens(),
		RequestsInDay: atomic.LoadInt64(&b.dailyUsed),
		DailyLimit:    b.dailyLimit,
	}, true
}
