package kiteconnect

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instrumentation for a Client: a struct of
// pre-built collectors plus small helper methods, registered once at
// construction.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	RateLimitWaits  *prometheus.CounterVec
	ChunksTotal     prometheus.Counter
	InstrumentCacheHits   prometheus.Counter
	InstrumentCacheMisses prometheus.Counter
}

// NewMetrics builds and registers a fresh set of collectors against reg.
// Pass prometheus.NewRegistry() in tests to avoid collisions with the
// global default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiteconnect_request_duration_seconds",
				Help:    "Duration of dispatched broker API calls, retries included.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint", "outcome"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteconnect_requests_total",
				Help: "Total dispatched broker API calls; retries of one call count once.",
			},
			[]string{"endpoint", "outcome"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteconnect_retries_total",
				Help: "Total retry attempts issued by the retry controller.",
			},
			[]string{"endpoint"},
		),
		RateLimitWaits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiteconnect_rate_limit_waits_total",
				Help: "Total token-bucket acquisitions per rate-limit category, whether or not the call had to wait.",
			},
			[]string{"category"},
		),
		ChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kiteconnect_historical_chunks_total",
				Help: "Total historical-data sub-requests issued by the chunk planner.",
			},
		),
		InstrumentCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kiteconnect_instruments_cache_hits_total",
				Help: "Instrument list lookups served from the in-process cache.",
			},
		),
		InstrumentCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kiteconnect_instruments_cache_misses_total",
				Help: "Instrument list lookups that required a fresh download.",
			},
		),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.RequestsTotal,
		m.RetriesTotal,
		m.RateLimitWaits,
		m.ChunksTotal,
		m.InstrumentCacheHits,
		m.InstrumentCacheMisses,
	)
	return m
}

// RequestTimer tracks the duration of one dispatched API call, retries
// included, from StartRequest to Stop.
type RequestTimer struct {
	metrics  *Metrics
	endpoint string
	start    time.Time
}

func (m *Metrics) StartRequest(endpoint string) *RequestTimer {
	return &RequestTimer{metrics: m, endpoint: endpoint, start: time.Now()}
}

func (t *RequestTimer) Stop(outcome string) {
	if t.metrics == nil {
		return
	}
	t.metrics.RequestDuration.WithLabelValues(t.endpoint, outcome).Observe(time.Since(t.start).Seconds())
	t.metrics.RequestsTotal.WithLabelValues(t.endpoint, outcome).Inc()
}
