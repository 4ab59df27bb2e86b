// Package metrics exposes Prometheus collectors for the newsroom pipeline.
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

var (
	fetchAttemptsTotal         *prometheus.CounterVec
	fetchBytesTotal            *prometheus.CounterVec
	extractedItemsTotal        *prometheus.CounterVec
	stageOutcomesTotal         *prometheus.CounterVec
	publishResultsTotal        *prometheus.CounterVec
	mediaDownloadsTotal        *prometheus.CounterVec
	mediaBytesTotal            prometheus.Counter
	stageDurationSeconds       *prometheus.HistogramVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times, and every
// Observe function calls it.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_fetch_attempts_total",
				Help: "Portal fetch attempts, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_fetch_bytes_total",
				Help: "Bytes fetched from portals, labeled by site.",
			},
			[]string{"site"},
		)

		extractedItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_extracted_items_total",
				Help: "Raw items extracted, labeled by portal and fallback kind.",
			},
			[]string{"portal", "fallback"},
		)

		stageOutcomesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_stage_outcomes_total",
				Help: "Per-item stage outcomes, labeled by stage and kind.",
			},
			[]string{"stage", "kind"},
		)

		publishResultsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_publish_results_total",
				Help: "Publish results, labeled by status.",
			},
			[]string{"status"},
		)

		mediaDownloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_media_downloads_total",
				Help: "Image downloads, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		mediaBytesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newsroom_media_bytes_total",
				Help: "Bytes of validated images downloaded.",
			},
		)

		stageDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsroom_stage_duration_seconds",
				Help:    "Histogram of stage durations.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"stage"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsroom_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsroom_status_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newsroom_status_http_request_duration_seconds",
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

// ObserveFetch records one fetch attempt.
func ObserveFetch(rawURL, outcome string, bytesFetched int) {
	Init()
	site := SanitizeSite(rawURL)
	fetchAttemptsTotal.WithLabelValues(site, outcome).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
}

// ObserveExtracted records the items produced for a portal.
func ObserveExtracted(portal, fallback string, n int) {
	Init()
	extractedItemsTotal.WithLabelValues(portal, fallback).Add(float64(n))
}

// ObserveOutcome records a per-item stage outcome.
func ObserveOutcome(stage, kind string) {
	Init()
	stageOutcomesTotal.WithLabelValues(stage, kind).Inc()
}

// ObservePublish records a publish result status.
func ObservePublish(status string) {
	Init()
	publishResultsTotal.WithLabelValues(status).Inc()
}

// ObserveMediaDownload records an image download outcome.
func ObserveMediaDownload(outcome string, bytes int) {
	Init()
	mediaDownloadsTotal.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		mediaBytesTotal.Add(float64(bytes))
	}
}

// ObserveStageDuration records how long a stage ran.
func ObserveStageDuration(stage string, d time.Duration) {
	Init()
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, d time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(d.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}
