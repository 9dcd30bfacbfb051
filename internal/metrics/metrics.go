package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streamlist"

// Recorder groups the collectors registered for one process.
type Recorder struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	resolverOutcomes *prometheus.CounterVec
	batchTitles      *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New registers the StreamList collectors on a fresh registry. Process and Go
// runtime collectors are included when withRuntime is true.
func New(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	r := &Recorder{
		registry: reg,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream catalog requests by catalog, operation, and outcome.",
		}, []string{"catalog", "op", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream catalog request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"catalog", "op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by catalog and result.",
		}, []string{"catalog", "result"}),
		resolverOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "outcomes_total",
			Help:      "Cross-catalog resolutions by winning strategy (none when exhausted).",
		}, []string{"strategy"}),
		batchTitles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "titles_total",
			Help:      "Titles processed by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Wall time of whole batch runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		r.upstreamRequests,
		r.upstreamLatency,
		r.cacheLookups,
		r.resolverOutcomes,
		r.batchTitles,
		r.batchDuration,
		r.httpRequests,
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveUpstream records one upstream call.
func (r *Recorder) ObserveUpstream(catalog, op, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(catalog, op, outcome).Inc()
	r.upstreamLatency.WithLabelValues(catalog, op).Observe(elapsed.Seconds())
}

// ObserveCache records a response cache lookup.
func (r *Recorder) ObserveCache(catalog string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(catalog, result).Inc()
}

// ObserveResolution records which strategy produced a cross-catalog match.
func (r *Recorder) ObserveResolution(strategy string) {
	if r == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	r.resolverOutcomes.WithLabelValues(strategy).Inc()
}

// ObserveTitle records the outcome of one per-title pipeline run.
func (r *Recorder) ObserveTitle(outcome string) {
	if r == nil {
		return
	}
	r.batchTitles.WithLabelValues(outcome).Inc()
}

// ObserveBatch records a completed batch run.
func (r *Recorder) ObserveBatch(elapsed time.Duration) {
	if r == nil {
		return
	}
	r.batchDuration.Observe(elapsed.Seconds())
}

// ObserveHTTP records a served API request.
func (r *Recorder) ObserveHTTP(route string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
