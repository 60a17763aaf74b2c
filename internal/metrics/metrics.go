// Package metrics holds the Prometheus collectors shared by the cache, the metadata
// providers and the search engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// cacheLookups counts memoized lookups by cache kind and result (hit|miss).
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviepath_cache_lookups_total",
		Help: "Memoized metadata lookups by cache and result",
	}, []string{"cache", "result"})

	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviepath_cache_evictions_total",
		Help: "Entries evicted from a metadata cache",
	}, []string{"cache"})

	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviepath_provider_requests_total",
		Help: "Metadata provider requests by provider, kind and outcome",
	}, []string{"provider", "kind", "outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviepath_provider_request_duration_seconds",
		Help:    "Metadata provider request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"provider", "kind"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviepath_search_duration_seconds",
		Help:    "End to end path search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"mode", "outcome"})

	searchSettled = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviepath_search_settled_nodes",
		Help:    "Movies settled by both frontiers per search",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"mode"})

	httpRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviepath_http_request_duration_seconds",
		Help:    "HTTP request latency by route, method and status code",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

// CacheHit records a lookup served from the named cache.
func CacheHit(cache string) {
	cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a lookup that had to go to the provider.
func CacheMiss(cache string) {
	cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// CacheEviction records a least-recently-used eviction.
func CacheEviction(cache string) {
	cacheEvictions.WithLabelValues(cache).Inc()
}

// ObserveProviderRequest records the outcome and latency of one provider call.
func ObserveProviderRequest(provider, kind string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerRequests.WithLabelValues(provider, kind, outcome).Inc()
	providerLatency.WithLabelValues(provider, kind).Observe(time.Since(started).Seconds())
}

// ObserveSearch records a finished search.
func ObserveSearch(mode, outcome string, started time.Time, settled int) {
	searchDuration.WithLabelValues(mode, outcome).Observe(time.Since(started).Seconds())
	searchSettled.WithLabelValues(mode).Observe(float64(settled))
}

// ObserveHTTPRequest records one served request. route must come from a fixed set.
func ObserveHTTPRequest(route, method string, status int, started time.Time) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
