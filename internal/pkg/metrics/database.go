// Package metrics provides Prometheus metrics recording for internal packages.
// This package exists to avoid import cycles between database and middleware packages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SlowOperationThreshold marks a document store operation as slow
const SlowOperationThreshold = 100 * time.Millisecond

var (
	// dbOperationDuration tracks document store operation duration in seconds
	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_db_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"collection", "operation"},
	)

	// dbOperationTotal tracks total document store operations
	dbOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_db_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"collection", "operation"},
	)

	// dbOperationErrors tracks document store operation errors
	dbOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_db_operation_errors_total",
			Help: "Total number of document store operation errors",
		},
		[]string{"collection", "operation"},
	)

	// dbSlowOperations tracks slow document store operations
	dbSlowOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_db_slow_operations_total",
			Help: "Total number of slow document store operations (>100ms)",
		},
		[]string{"collection", "operation"},
	)
)

// RecordDBOperation records document store operation metrics
func RecordDBOperation(collection, operation string, duration time.Duration) {
	dbOperationTotal.WithLabelValues(collection, operation).Inc()
	dbOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())

	if duration > SlowOperationThreshold {
		dbSlowOperations.WithLabelValues(collection, operation).Inc()
	}
}

// RecordDBError records a document store operation error
func RecordDBError(collection, operation string) {
	dbOperationErrors.WithLabelValues(collection, operation).Inc()
}
