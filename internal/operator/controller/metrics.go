package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// Reconciliation metrics
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planguard",
			Subsystem: "controller",
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations by result",
		},
		[]string{"provider", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planguard",
			Subsystem: "controller",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"provider"},
	)

	// Policy metrics
	policyRules = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "planguard",
			Subsystem: "policy",
			Name:      "rules",
			Help:      "Number of field rules by policy and flag",
		},
		[]string{"provider", "policy", "flag"},
	)

	policyUnknownFields = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "planguard",
			Subsystem: "policy",
			Name:      "unknown_fields",
			Help:      "Number of ruled fields missing from the plan schema",
		},
		[]string{"provider", "policy"},
	)

	seededPoliciesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planguard",
			Subsystem: "bootstrap",
			Name:      "policies_total",
			Help:      "Built-in policies handled at start-up by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		policyRules,
		policyUnknownFields,
		seededPoliciesTotal,
	)
}

// recordReconcileMetric records a reconciliation result.
func recordReconcileMetric(provider, result string, duration float64) {
	reconcileTotal.WithLabelValues(provider, result).Inc()
	reconcileDuration.WithLabelValues(provider).Observe(duration)
}

// recordPolicyMetric records the rule and unknown field counts of a policy.
func recordPolicyMetric(provider, policy string, allowed, denied, unknown int) {
	policyRules.WithLabelValues(provider, policy, "allow").Set(float64(allowed))
	policyRules.WithLabelValues(provider, policy, "deny").Set(float64(denied))
	policyUnknownFields.WithLabelValues(provider, policy).Set(float64(unknown))
}

// forgetPolicyMetric drops the series of a deleted policy.
func forgetPolicyMetric(provider, policy string) {
	policyRules.DeleteLabelValues(provider, policy, "allow")
	policyRules.DeleteLabelValues(provider, policy, "deny")
	policyUnknownFields.DeleteLabelValues(provider, policy)
}

// recordSeedMetric records built-in policy outcomes.
func recordSeedMetric(outcome string, count int) {
	seededPoliciesTotal.WithLabelValues(outcome).Add(float64(count))
}

// Metrics helper methods that check enableMetrics before recording.

func (r *PlanPolicyReconciler) recordReconcile(provider, result string, duration float64) {
	if r.enableMetrics {
		recordReconcileMetric(provider, result, duration)
	}
}

func (r *PlanPolicyReconciler) recordPolicy(provider, policy string, allowed, denied, unknown int) {
	if r.enableMetrics {
		recordPolicyMetric(provider, policy, allowed, denied, unknown)
	}
}

func (r *PlanPolicyReconciler) forgetPolicy(provider, policy string) {
	if r.enableMetrics {
		forgetPolicyMetric(provider, policy)
	}
}
