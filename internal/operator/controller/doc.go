// Package controller contains the Kubernetes controller of the planguard
// operator.
//
// The PlanPolicyReconciler keeps the status of every PlanPolicy current:
// rule counts, allowed and denied fields, fields unknown to the plan schema
// and the decision of each schema field under the provider's configured
// default. Policies themselves are never modified; the admin service owns
// .spec.
package controller
