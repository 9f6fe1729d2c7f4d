// Package labels provides consistent labeling utilities for PlanPolicy resources.
//
// Labels make policies selectable by provider kind without decoding their spec,
// which the Kubernetes store relies on for List.
package labels

import k8slabels "k8s.io/apimachinery/pkg/labels"

// Standard label keys, namespaced with the planguard.k8zner.io prefix.
const (
	// KeyProviderKind identifies the provider kind a policy governs
	KeyProviderKind = "planguard.k8zner.io/provider-kind"

	// KeyPolicy identifies the policy name within its provider kind
	KeyPolicy = "planguard.k8zner.io/policy"

	// KeyBuiltin marks system-seeded read-only policies
	KeyBuiltin = "planguard.k8zner.io/builtin"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"
)

// ManagedBy values
const (
	ManagedByCLI      = "planguard"
	ManagedByOperator = "planguard-operator"
)

// LabelBuilder provides a fluent interface for building PlanPolicy labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with provider kind and policy name pre-set.
func NewLabelBuilder(providerKind, policy string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyProviderKind: providerKind,
			KeyPolicy:       policy,
			KeyManagedBy:    ManagedByCLI,
		},
	}
}

// WithBuiltin marks the policy as built-in when builtin is true.
func (lb *LabelBuilder) WithBuiltin(builtin bool) *LabelBuilder {
	if builtin {
		lb.labels[KeyBuiltin] = "true"
	}
	return lb
}

// WithManagedBy sets who manages this resource.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	lb.labels[KeyManagedBy] = manager
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
// Returns a copy to prevent external mutations.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForProvider returns a label selector for all policies of a provider
// kind, or for every policy when providerKind is empty.
func SelectorForProvider(providerKind string) k8slabels.Selector {
	if providerKind == "" {
		return k8slabels.Everything()
	}
	return k8slabels.SelectorFromSet(k8slabels.Set{KeyProviderKind: providerKind})
}
