// Package metrics exposes Prometheus collectors for the resolver service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the collectors.
const (
	OutcomeSuccess = "success"
	CacheHit       = "hit"
	CacheMiss      = "miss"
)

var (
	resolutionsTotal           *prometheus.CounterVec
	cacheLookupsTotal          *prometheus.CounterVec
	blacklistHitsTotal         prometheus.Counter
	blacklistInsertsTotal      prometheus.Counter
	fetchesTotal               *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	sweepDeletedTotal          prometheus.Counter
	rateLimitedTotal           *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		resolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolver_resolutions_total",
				Help: "Total number of resolutions, labeled by service, strategy and outcome.",
			},
			[]string{"service", "strategy", "outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgresolver_cache_lookups_total",
				Help: "Total number of cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		blacklistHitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "imgresolver_blacklist_hits_total",
				Help: "Total number of requests refused because the page is blacklisted.",
			},
		)

		blacklistInsertsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "imgresolver_blacklist_inserts_total",
				Help: "Total number of pages added to the blacklist.",
			},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgresolver_fetches_total",
				Help: "Total number of source page fetches, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imgresolver_fetch_duration_seconds",
				Help:    "Histogram of source page fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"site"},
		)

		sweepDeletedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "imgresolver_blacklist_swept_total",
				Help: "Total number of blacklist entries removed by sweeps.",
			},
		)

		rateLimitedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imgresolver_rate_limited_total",
				Help: "Total number of API requests rejected by the per-client limiter.",
			},
			[]string{"route"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveResolution counts a finished resolution. outcome is OutcomeSuccess or
// a failure kind; service and strategy are empty when no rule matched.
func ObserveResolution(service, strategy, outcome string) {
	Init()
	if service == "" {
		service = "none"
	}
	if strategy == "" {
		strategy = "none"
	}
	resolutionsTotal.WithLabelValues(service, strategy, outcome).Inc()
}

// ObserveCacheLookup counts a cache lookup as a hit or miss.
func ObserveCacheLookup(hit bool) {
	Init()
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveBlacklistHit counts a request refused by the blacklist.
func ObserveBlacklistHit() {
	Init()
	blacklistHitsTotal.Inc()
}

// ObserveBlacklistInsert counts a page newly added to the blacklist.
func ObserveBlacklistInsert() {
	Init()
	blacklistInsertsTotal.Inc()
}

// ObserveFetch records a source page fetch. status is the HTTP status code, or
// "error" for transport failures.
func ObserveFetch(pageURL, status string, duration time.Duration) {
	Init()
	site := SanitizeSite(pageURL)
	fetchesTotal.WithLabelValues(site, status).Inc()
	fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
}

// ObserveSweep adds the number of blacklist rows a sweep removed.
func ObserveSweep(deleted int64) {
	Init()
	if deleted > 0 {
		sweepDeletedTotal.Add(float64(deleted))
	}
}

// ObserveRateLimited counts a request rejected by the per-client limiter.
func ObserveRateLimited(route string) {
	Init()
	rateLimitedTotal.WithLabelValues(route).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
