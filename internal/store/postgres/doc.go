// Package postgres stores policies in the planguard.policies table.
//
// Rules are kept as a jsonb object and resource_version is a counter bumped
// on every update. Updates and deletes only match the row when the caller's
// resource version is current; otherwise they fail with ErrConflict.
package postgres
