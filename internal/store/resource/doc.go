// Package resource converts between governance policies and PlanPolicy
// documents, the metadata/spec/status shape shared by the Kubernetes and
// object-storage backends.
package resource
