// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Simulation metrics
	SimulationsTotal   *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
	DaysSimulated      prometheus.Counter

	// Dataset cache metrics
	DatasetCacheHits   prometheus.Counter
	DatasetCacheMisses prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storage_arbitrage"
	}

	return &Metrics{
		// API metrics
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by method, path and status",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		// Simulation metrics
		SimulationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by strategy and status",
		}, []string{"strategy", "status"}),
		SimulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DaysSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "days_simulated_total",
			Help:      "Total number of market days simulated",
		}),

		// Dataset cache metrics
		DatasetCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "dataset_cache_hits_total",
			Help:      "Total number of dataset cache hits",
		}),
		DatasetCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data",
			Name:      "dataset_cache_misses_total",
			Help:      "Total number of dataset cache misses",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRequest records one handled API request.
func RecordRequest(method, path, status string, seconds float64) {
	DefaultMetrics.RequestsTotal.WithLabelValues(method, path, status).Inc()
	DefaultMetrics.RequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordSimulation records one simulation run.
func RecordSimulation(strategy, status string, seconds float64, days int) {
	DefaultMetrics.SimulationsTotal.WithLabelValues(strategy, status).Inc()
	DefaultMetrics.SimulationDuration.Observe(seconds)
	DefaultMetrics.DaysSimulated.Add(float64(days))
}

// RecordDatasetCache records a dataset cache lookup.
func RecordDatasetCache(hit bool) {
	if hit {
		DefaultMetrics.DatasetCacheHits.Inc()
	} else {
		DefaultMetrics.DatasetCacheMisses.Inc()
	}
}
