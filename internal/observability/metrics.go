package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	drawRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "engine",
			Name:      "draw_requests_total",
			Help:      "Total draw requests by outcome.",
		},
		[]string{"outcome"},
	)

	drawsSettled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "engine",
			Name:      "draws_settled_total",
			Help:      "Total draws that settled and were recorded.",
		},
	)

	revealDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "luckydraw",
			Subsystem: "engine",
			Name:      "reveal_duration_seconds",
			Help:      "Wall time from draw start to settle.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to ~1m
		},
	)

	eventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "luckydraw",
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Current number of connected event stream subscribers.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "luckydraw",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "luckydraw",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		drawRequests,
		drawsSettled,
		revealDuration,
		eventSubscribers,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// MetricsHandler returns an HTTP handler exposing the registered
// Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// CountDrawRequest records the outcome of one draw request: "accepted",
// "already_running", or "exhausted".
func CountDrawRequest(outcome string) {
	drawRequests.WithLabelValues(outcome).Inc()
}

// CountDrawSettled records one settled draw.
func CountDrawSettled() {
	drawsSettled.Inc()
}

// ObserveRevealDuration records the wall time of one completed reveal.
func ObserveRevealDuration(took time.Duration) {
	revealDuration.Observe(took.Seconds())
}

// TrackSubscriber adjusts the event stream subscriber gauge by delta.
func TrackSubscriber(delta int) {
	eventSubscribers.Add(float64(delta))
}

// ObserveHTTPRequest records one handled HTTP request. path should be the
// route pattern, not the raw URL, to keep label cardinality bounded.
func ObserveHTTPRequest(method, path string, status int, took time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(took.Seconds())
}
