// Package kube stores policies as PlanPolicy custom resources.
//
// Each policy is one namespaced object named "<kind>.<name>", e.g.
// "gke.testpolicy". Optimistic concurrency uses the object's resourceVersion,
// which the API server checks on update and, through delete preconditions,
// on delete.
package kube
