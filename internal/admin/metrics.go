package admin

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/planguard/internal/governance"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planguard",
			Subsystem: "admin",
			Name:      "operations_total",
			Help:      "Total number of policy admin operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planguard",
			Subsystem: "admin",
			Name:      "operation_duration_seconds",
			Help:      "Duration of policy admin operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planguard",
			Subsystem: "policy",
			Name:      "evaluations_total",
			Help:      "Total number of field evaluations by provider and decision",
		},
		[]string{"provider", "decision"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		operationsTotal,
		operationDuration,
		evaluationsTotal,
	)
}

// Result label values.
const (
	resultSuccess      = "success"
	resultNotFound     = "not_found"
	resultDuplicate    = "duplicate"
	resultReadOnly     = "read_only"
	resultUnknownField = "unknown_field"
	resultConflict     = "conflict"
	resultInvalid      = "invalid"
	resultError        = "error"
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, governance.ErrPolicyNotFound):
		return resultNotFound
	case errors.Is(err, governance.ErrDuplicatePolicyName):
		return resultDuplicate
	case errors.Is(err, governance.ErrPolicyReadOnly):
		return resultReadOnly
	case errors.Is(err, governance.ErrUnknownField):
		return resultUnknownField
	case errors.Is(err, governance.ErrConflict):
		return resultConflict
	case errors.Is(err, governance.ErrInvalidName),
		errors.Is(err, governance.ErrInvalidFieldName),
		errors.Is(err, governance.ErrInvalidProviderKind),
		errors.Is(err, governance.ErrInvalidDefault):
		return resultInvalid
	default:
		return resultError
	}
}

// recordOperationMetric records an admin operation outcome.
func recordOperationMetric(operation string, err error, duration float64) {
	operationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration)
}

// recordEvaluationMetric records one evaluated field.
func recordEvaluationMetric(kind governance.ProviderKind, decision governance.Decision) {
	evaluationsTotal.WithLabelValues(kind.String(), decision.String()).Inc()
}
