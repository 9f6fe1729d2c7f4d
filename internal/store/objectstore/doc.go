// Package objectstore stores policies as JSON PlanPolicy documents in an
// S3-compatible bucket, one object per policy under
// "<prefix>/policies/<kind>/<name>.json".
//
// The object's ETag is the policy's resource version. Creates are guarded by
// If-None-Match and updates and deletes by If-Match, so concurrent writers
// never overwrite each other.
package objectstore
