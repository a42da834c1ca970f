package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache lookups by outcome
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpulse_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"level"},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coinpulse_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpulse_cache_errors_total",
			Help: "Total number of cache errors",
		},
		[]string{"level", "kind"}, // kind: encode, decode, upstream
	)

	// Upstream API calls
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpulse_upstream_requests_total",
			Help: "Total number of requests sent to the market data API",
		},
		[]string{"endpoint", "code"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coinpulse_upstream_request_duration_seconds",
			Help:    "Duration of requests sent to the market data API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Views that rendered their fallback
	ViewDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinpulse_view_degraded_total",
			Help: "Total number of view loads that degraded to the fallback render",
		},
		[]string{"view"},
	)
)

// RecordCacheHit records a hit served by the given cache level
func RecordCacheHit(level string) {
	CacheHits.WithLabelValues(level).Inc()
}

// RecordCacheMiss records a lookup no cache level could serve
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordCacheError records a cache error with level and kind
func RecordCacheError(level, kind string) {
	CacheErrors.WithLabelValues(level, kind).Inc()
}

// RecordUpstream records one upstream call. A zero status means the request
// never produced a response.
func RecordUpstream(endpoint string, status int) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(endpoint, code).Inc()
}

// TimeUpstream returns a function that observes the elapsed upstream call time
func TimeUpstream(endpoint string) func() {
	timer := prometheus.NewTimer(UpstreamDuration.WithLabelValues(endpoint))
	return func() {
		timer.ObserveDuration()
	}
}

// RecordViewDegraded records a view that fell back to its degraded render
func RecordViewDegraded(view string) {
	ViewDegraded.WithLabelValues(view).Inc()
}
