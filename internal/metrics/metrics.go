// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperRequestsTotal      *prometheus.CounterVec
	scraperRetriesTotal       *prometheus.CounterVec
	scraperCacheLookupsTotal  *prometheus.CounterVec
	scraperLeadersTotal       *prometheus.CounterVec
	scraperCountriesTotal     *prometheus.CounterVec
	scraperRateLimitDelaySecs prometheus.Histogram
	scraperRunDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_requests_total",
				Help: "Total number of outbound HTTP requests, labeled by source and status.",
			},
			[]string{"source", "status"},
		)

		scraperRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_retries_total",
				Help: "Total number of fetch retries, labeled by source.",
			},
			[]string{"source"},
		)

		scraperCacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_cache_lookups_total",
				Help: "Cache lookups, labeled by entry kind and hit/miss.",
			},
			[]string{"kind", "result"},
		)

		scraperLeadersTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_leaders_total",
				Help: "Leaders processed per run, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperCountriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_countries_total",
				Help: "Countries processed per run, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperRateLimitDelaySecs = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_delay_seconds",
				Help:    "Delay injected before biography fetches.",
				Buckets: prometheus.DefBuckets,
			},
		)

		scraperRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_run_duration_seconds",
				Help:    "Wall-clock duration of pipeline runs.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		)
	})
}

// IncRequest counts one outbound request. A zero status records as "error".
func IncRequest(source string, status int) {
	if scraperRequestsTotal == nil {
		return
	}
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	scraperRequestsTotal.WithLabelValues(source, label).Inc()
}

// IncRetry counts one retry for the given source.
func IncRetry(source string) {
	if scraperRetriesTotal == nil {
		return
	}
	scraperRetriesTotal.WithLabelValues(source).Inc()
}

// IncCacheLookup counts a cache hit or miss for an entry kind.
func IncCacheLookup(kind string, hit bool) {
	if scraperCacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	scraperCacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// IncLeaderOutcome counts a leader terminal state.
func IncLeaderOutcome(outcome string) {
	if scraperLeadersTotal == nil {
		return
	}
	scraperLeadersTotal.WithLabelValues(outcome).Inc()
}

// IncCountryOutcome counts a country terminal state.
func IncCountryOutcome(outcome string) {
	if scraperCountriesTotal == nil {
		return
	}
	scraperCountriesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimitDelay records a rate limiter pause.
func ObserveRateLimitDelay(d time.Duration) {
	if scraperRateLimitDelaySecs == nil {
		return
	}
	scraperRateLimitDelaySecs.Observe(d.Seconds())
}

// ObserveRunDuration records a full pipeline run.
func ObserveRunDuration(d time.Duration) {
	if scraperRunDurationSeconds == nil {
		return
	}
	scraperRunDurationSeconds.Observe(d.Seconds())
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
