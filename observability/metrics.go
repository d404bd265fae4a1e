package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts adapter calls by collection, operation and outcome.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_store_operations_total",
		Help: "Total number of store operations",
	}, []string{"collection", "operation", "outcome"})

	// StoreLatency records adapter call latency.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postgraph_store_latency_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "operation"})

	// StoreConflictRetries counts revision conflicts retried by array updates.
	StoreConflictRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_store_conflict_retries_total",
		Help: "Total number of revision conflicts retried on array updates",
	}, []string{"collection"})

	// ReferenceResolutions counts relationship field resolutions.
	ReferenceResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_reference_resolutions_total",
		Help: "Total number of reference field resolutions",
	}, []string{"type", "field", "outcome"})

	// DanglingReferencesDropped counts ids dropped from set references because
	// their target no longer exists.
	DanglingReferencesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_dangling_references_dropped_total",
		Help: "Total number of dangling ids silently dropped from set references",
	}, []string{"type", "field"})

	// Mutations counts coordinator mutations by name and outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_mutations_total",
		Help: "Total number of mutations",
	}, []string{"mutation", "outcome"})

	// PartialWrites counts fan-out mutations that stopped after a write had
	// already succeeded.
	PartialWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postgraph_partial_writes_total",
		Help: "Total number of fan-out mutations left partially applied",
	}, []string{"mutation"})
)

// Outcome maps an error to a metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// TrackStore returns a function that records latency and outcome of a store
// call when called (e.g. defer).
func TrackStore(collection, operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		StoreLatency.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
		StoreOperations.WithLabelValues(collection, operation, Outcome(err)).Inc()
	}
}
