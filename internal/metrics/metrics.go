package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache outcomes per layer or keyed lookup ("flights", "geosearch", ...).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldview_cache_hits_total",
			Help: "Requests served from a fresh cache entry",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldview_cache_misses_total",
			Help: "Requests that required an upstream fetch",
		},
		[]string{"cache"},
	)

	CacheStaleServes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldview_cache_stale_serves_total",
			Help: "Requests answered with stale data after an upstream failure",
		},
		[]string{"cache"},
	)

	LayerItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worldview_layer_items",
			Help: "Number of records held for a layer after the last successful fetch",
		},
		[]string{"layer"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worldview_upstream_request_duration_seconds",
			Help:    "Duration of outbound requests to data sources",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worldview_upstream_errors_total",
			Help: "Failed fetches per data source",
		},
		[]string{"source"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worldview_circuit_breaker_state",
			Help: "Circuit breaker state per source (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)
)

// ObserveUpstream records one outbound request.
func ObserveUpstream(source string, start time.Time, err error) {
	UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(source).Inc()
	}
}
