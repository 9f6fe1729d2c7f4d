// Package retry provides exponential backoff retry logic for callers of the
// policy admin service.
//
// The admin service never retries on its own. Callers such as the CLI use
// [OnConflict] to re-run a read-modify-write mutation when another writer
// changed the same policy in between; every other error ends the loop.
// The operator seeder uses [Do] to ride out a store that is not reachable
// yet.
package retry
