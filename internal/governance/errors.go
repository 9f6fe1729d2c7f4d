package governance

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrPolicyNotFound means no policy exists for the (providerKind, name) key.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDuplicatePolicyName means a create collided with an existing policy.
	ErrDuplicatePolicyName = errors.New("duplicate policy name")

	// ErrPolicyReadOnly means a mutation targeted a built-in policy.
	ErrPolicyReadOnly = errors.New("policy is read-only")

	// ErrUnknownField means a rule referenced a field absent from the plan schema.
	// Only returned when strict field validation is enabled.
	ErrUnknownField = errors.New("unknown field")

	// ErrConflict means the record changed between read and write. The
	// backend's own error is wrapped alongside it.
	ErrConflict = errors.New("policy was modified concurrently")

	ErrInvalidName         = errors.New("invalid policy name")
	ErrInvalidFieldName    = errors.New("invalid field name")
	ErrInvalidProviderKind = errors.New("invalid provider kind")
	ErrInvalidDefault      = errors.New("invalid global default")
)

// PolicyError describes a failed operation on a policy.
type PolicyError struct {
	// Op is the operation name, e.g. "create" or "toggle-deny".
	Op    string
	Key   PolicyKey
	Field string
	Err   error
}

func (e *PolicyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s field %q: %v", e.Op, e.Key, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps ErrPolicyNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPolicyNotFound)
}

// IsDuplicate reports whether err is or wraps ErrDuplicatePolicyName.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicatePolicyName)
}

// IsReadOnly reports whether err is or wraps ErrPolicyReadOnly.
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrPolicyReadOnly)
}

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// ConflictError wraps a backend error so that it matches ErrConflict while
// keeping the original error reachable through errors.As.
func ConflictError(err error) error {
	return fmt.Errorf("%w: %w", ErrConflict, err)
}
