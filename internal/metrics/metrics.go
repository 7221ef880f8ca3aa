// Package metrics holds the Prometheus collectors of the command service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "command_service"

// Gateway relay outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
)

// Cache operation outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheOK    = "ok"
	CacheError = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	gatewayCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "commands_total",
			Help:      "Commands relayed to Gateway APIs by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "command_duration_seconds",
			Help:      "Round-trip time of Gateway API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"endpoint"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Response cache operations by kind and result.",
		},
		[]string{"op", "result"},
	)

	cacheUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "up",
			Help:      "Whether the last response cache probe succeeded (1) or failed (0).",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		gatewayCommands,
		gatewayDuration,
		cacheOps,
		cacheUp,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request. path should be a route
// template, not the raw URL.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncInFlight increments the in-flight request gauge.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight decrements the in-flight request gauge.
func DecInFlight() { httpInFlight.Dec() }

// RecordGatewayCommand records a relayed command.
func RecordGatewayCommand(endpoint, outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	gatewayCommands.WithLabelValues(endpoint, outcome).Inc()
	gatewayDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheOp records a response cache operation.
func RecordCacheOp(op, result string) {
	cacheOps.WithLabelValues(op, result).Inc()
}

// SetCacheUp publishes the result of the last cache probe.
func SetCacheUp(up bool) {
	if up {
		cacheUp.Set(1)
		return
	}
	cacheUp.Set(0)
}
