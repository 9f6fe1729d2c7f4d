package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errPolicyNameRequired = errors.New("policy name is required")
	errPolicyNameInvalid  = errors.New("policy name must be at most 63 lowercase alphanumeric characters or hyphens, starting and ending with alphanumeric")
	errNamespaceRequired  = errors.New("namespace is required")
	errNamespaceInvalid   = errors.New("namespace must be a valid DNS-1123 label")
	errEndpointRequired   = errors.New("endpoint is required")
	errEndpointInvalid    = errors.New("endpoint must be an absolute URL (e.g. https://fsn1.your-objectstorage.com)")
	errBucketRequired     = errors.New("bucket is required")
	errDSNInvalid         = errors.New("DSN must start with postgres:// or postgresql://")
)
