// Package s3 provides a client for S3-compatible object storage such as
// Hetzner Object Storage.
//
// Besides bucket handling it exposes conditional writes: PutObject and
// DeleteObject accept an If-Match / If-None-Match condition so that callers
// can implement compare-and-swap on an object's ETag.
package s3
