// Package v1alpha1 contains API Schema definitions for the planguard.k8zner.io v1alpha1 API group
// +kubebuilder:object:generate=true
// +groupName=planguard.k8zner.io
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Kind is the resource kind of PlanPolicy documents.
const Kind = "PlanPolicy"

// PlanPolicySpec defines which plan fields a team may change.
// +kubebuilder:validation:XValidation:rule="(has(self.readOnly) && self.readOnly) == (has(oldSelf.readOnly) && oldSelf.readOnly)",message="readOnly is immutable"
// +kubebuilder:validation:XValidation:rule="!has(oldSelf.readOnly) || !oldSelf.readOnly || self == oldSelf",message="a read-only policy cannot be changed"
type PlanPolicySpec struct {
	// ProviderKind is the cloud provider the governed plans target
	// +kubebuilder:validation:Enum=GKE;EKS;AKS
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="providerKind is immutable"
	ProviderKind string `json:"providerKind"`

	// PolicyName is the policy name, unique within the provider kind
	// +kubebuilder:validation:Pattern=`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`
	// +kubebuilder:validation:MaxLength=63
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="policyName is immutable"
	PolicyName string `json:"policyName"`

	// Description is free-text metadata
	// +optional
	Description string `json:"description,omitempty"`

	// Summary is a short free-text label
	// +optional
	Summary string `json:"summary,omitempty"`

	// ReadOnly marks a built-in policy that cannot be changed or deleted
	// +optional
	ReadOnly bool `json:"readOnly,omitempty"`

	// Rules maps plan field names to their allow/deny flags
	// +kubebuilder:validation:MaxProperties=512
	// +optional
	Rules map[string]FieldRule `json:"rules,omitempty"`
}

// FieldRule holds the explicit flags for one plan field.
type FieldRule struct {
	// Allow grants the field unless Deny is also set
	// +optional
	Allow bool `json:"allow,omitempty"`

	// Deny locks the field; it always wins over Allow
	// +optional
	Deny bool `json:"deny,omitempty"`
}

// PlanPolicyStatus defines the observed state of PlanPolicy.
type PlanPolicyStatus struct {
	// RuleCount is the number of fields with an explicit rule
	RuleCount int `json:"ruleCount"`

	// AllowedFields lists fields resolving to ExplicitAllow
	// +optional
	AllowedFields []string `json:"allowedFields,omitempty"`

	// DeniedFields lists fields resolving to ExplicitDeny
	// +optional
	DeniedFields []string `json:"deniedFields,omitempty"`

	// UnknownFields lists ruled fields missing from the plan schema
	// +optional
	UnknownFields []string `json:"unknownFields,omitempty"`

	// GlobalDefault is the default used to compute Decisions
	// +kubebuilder:validation:Enum=DefaultAllow;DefaultDeny
	// +optional
	GlobalDefault string `json:"globalDefault,omitempty"`

	// Decisions maps every schema field to its resolved decision
	// +optional
	Decisions map[string]string `json:"decisions,omitempty"`

	// Conditions represent the latest available observations
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// ObservedGeneration is the last observed generation
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=pp
// +kubebuilder:printcolumn:name="Provider",type=string,JSONPath=`.spec.providerKind`
// +kubebuilder:printcolumn:name="Policy",type=string,JSONPath=`.spec.policyName`
// +kubebuilder:printcolumn:name="ReadOnly",type=boolean,JSONPath=`.spec.readOnly`
// +kubebuilder:printcolumn:name="Rules",type=integer,JSONPath=`.status.ruleCount`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// PlanPolicy is the Schema for the planpolicies API.
type PlanPolicy struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   PlanPolicySpec   `json:"spec,omitempty"`
	Status PlanPolicyStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// PlanPolicyList contains a list of PlanPolicy.
type PlanPolicyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PlanPolicy `json:"items"`
}

// Condition types for PlanPolicy
const (
	// ConditionReady indicates the policy was reconciled
	ConditionReady = "Ready"
	// ConditionFieldsValid indicates every ruled field exists in the plan schema
	ConditionFieldsValid = "FieldsValid"
)
