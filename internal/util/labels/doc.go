// Package labels provides consistent labeling for PlanPolicy resources.
//
// All labels use the planguard.k8zner.io domain prefix and follow a builder
// pattern for constructing label sets with provider kind, policy name,
// built-in marker and manager identification.
package labels
