package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the runtime's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resell_trap",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resell_trap",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resell_trap",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	workerRestarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resell_trap",
			Subsystem: "supervisor",
			Name:      "worker_restarts_total",
			Help:      "Total number of worker process restarts.",
		},
	)

	healthCheckLatency = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resell_trap",
			Subsystem: "checker",
			Name:      "probe_latency_milliseconds",
			Help:      "Latency of the most recent health-check probe.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		workerRestarts,
		healthCheckLatency,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RequestStarted() {
	httpInFlight.Inc()
}

func RequestFinished() {
	httpInFlight.Dec()
}

func WorkerRestarted() {
	workerRestarts.Inc()
}

func SetProbeLatency(ms int64) {
	healthCheckLatency.Set(float64(ms))
}
