// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes independent operations concurrently, optionally
// bounded, and returns all of their errors joined. The object store uses it
// to read policy documents in parallel.
package async
