package governance

import (
	"context"
	"sort"
)

// Store persists policies keyed by (providerKind, name).
//
// Implementations must:
//   - return ErrPolicyNotFound from Get, Update and Delete for a missing key;
//   - return ErrDuplicatePolicyName from Create for an existing key;
//   - compare policy.ResourceVersion against the stored record in Update and
//     Delete and fail with an error matching ErrConflict on mismatch, leaving
//     the record untouched;
//   - never retry.
type Store interface {
	Get(ctx context.Context, key PolicyKey) (*Policy, error)

	// List returns the policies of kind, or of every kind when kind is empty,
	// sorted by provider kind then name.
	List(ctx context.Context, kind ProviderKind) ([]Policy, error)

	// Create persists a new policy, including its ReadOnly flag, and returns
	// the stored record with ResourceVersion, UID and CreatedAt set.
	Create(ctx context.Context, policy *Policy) (*Policy, error)

	// Update replaces description, summary and rules of an existing policy.
	// Provider kind, name, read-only flag and UID never change.
	Update(ctx context.Context, policy *Policy) (*Policy, error)

	Delete(ctx context.Context, policy *Policy) error
}

// SchemaProvider supplies the plan fields that rules may reference.
type SchemaProvider interface {
	FieldNames(ctx context.Context, kind ProviderKind) ([]string, error)
}

// SortPolicies orders policies by provider kind, then name.
func SortPolicies(policies []Policy) {
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Key.ProviderKind != policies[j].Key.ProviderKind {
			return policies[i].Key.ProviderKind < policies[j].Key.ProviderKind
		}
		return policies[i].Key.Name < policies[j].Key.Name
	})
}
