// Package metrics exposes storefinder's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "storefinder"

	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeInternalError   = "internal_error"
	OutcomeTimeout         = "timeout"
)

var (
	// Registry holds every storefinder collector. It is separate from the
	// prometheus default registry so tests can gather it in isolation.
	Registry = prometheus.NewRegistry()

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "queries_total",
			Help:      "Counter of store location queries broken out by outcome.",
		},
		[]string{"outcome"},
	)

	solveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time spent validating, scanning and evaluating a grid.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
		},
	)

	locationsFound = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "locations_found",
			Help:      "Number of feasible store locations reported per successful query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 1000, 10000, 160000},
		},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected because the client exceeded its rate limit.",
		},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(queriesTotal)
		Registry.MustRegister(solveDuration)
		Registry.MustRegister(locationsFound)
		Registry.MustRegister(rateLimited)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordQuery counts one store location query with the given outcome.
func RecordQuery(outcome string) {
	queriesTotal.WithLabelValues(outcome).Inc()
}

// RecordSolve records the duration and result size of a successful solve.
func RecordSolve(elapsed time.Duration, count int) {
	solveDuration.Observe(elapsed.Seconds())
	locationsFound.Observe(float64(count))
}

// RecordRateLimited counts one rejected request.
func RecordRateLimited() {
	rateLimited.Inc()
}
