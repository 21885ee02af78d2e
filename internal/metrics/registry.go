// Package metrics centralises the Prometheus collectors shared across
// the HTTP surface, the import pipeline, the cost engine, and the file
// watcher: one vector per component that mutates shared state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every custom collector registered by the process.
type Registry struct {
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
	CacheEvents   *prometheus.CounterVec
	ImportRuns    *prometheus.CounterVec
	ImportEntities *prometheus.CounterVec
	CostEvaluations *prometheus.CounterVec
	WatcherEvents *prometheus.CounterVec
}

// NewRegistry builds and registers the default collector set.
func NewRegistry() *Registry {
	reg := &Registry{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests served.",
		}, []string{"method", "path", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_events_total",
			Help: "Cache hits, misses, and invalidations for margin/dashboard keys.",
		}, []string{"event"}),
		ImportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_runs_total",
			Help: "Import pipeline invocations by outcome.",
		}, []string{"outcome"}),
		ImportEntities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_entities_total",
			Help: "Entities processed by the import pipeline, by classification.",
		}, []string{"kind", "classification"}),
		CostEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cost_evaluations_total",
			Help: "Recipe cost evaluations by outcome.",
		}, []string{"outcome"}),
		WatcherEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_events_total",
			Help: "File watcher events by action.",
		}, []string{"action"}),
	}

	prometheus.MustRegister(
		reg.HTTPRequests,
		reg.HTTPLatency,
		reg.CacheEvents,
		reg.ImportRuns,
		reg.ImportEntities,
		reg.CostEvaluations,
		reg.WatcherEvents,
	)

	return reg
}
