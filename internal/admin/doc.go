// Package admin implements the policy administration service: create,
// update, delete, rule toggles and evaluation of stored policies.
//
// Every mutation is one read followed by one compare-and-swap write against
// the governance.Store. Read-only (built-in) policies are rejected before any
// write. The service keeps no state between calls and never retries; a
// concurrent edit surfaces as governance.ErrConflict for the caller to retry.
package admin
