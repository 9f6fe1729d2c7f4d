package governance

import (
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation"
)

// PolicyKey identifies a policy within its provider kind.
type PolicyKey struct {
	ProviderKind ProviderKind
	Name         string
}

// NewPolicyKey parses kind and validates name.
func NewPolicyKey(kind, name string) (PolicyKey, error) {
	pk, err := ParseProviderKind(kind)
	if err != nil {
		return PolicyKey{}, err
	}
	key := PolicyKey{ProviderKind: pk, Name: name}
	if err := key.Validate(); err != nil {
		return PolicyKey{}, err
	}
	return key, nil
}

func (k PolicyKey) String() string {
	return fmt.Sprintf("%s/%s", k.ProviderKind, k.Name)
}

// Validate checks the provider kind and that the name is a DNS-1123 label.
func (k PolicyKey) Validate() error {
	if !k.ProviderKind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProviderKind, k.ProviderKind)
	}
	if errs := validation.IsDNS1123Label(k.Name); len(errs) > 0 {
		return fmt.Errorf("%w %q: %s", ErrInvalidName, k.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Policy is a named, provider-scoped set of field rules.
type Policy struct {
	Key         PolicyKey
	Description string
	Summary     string

	// ReadOnly marks built-in policies; they cannot be changed or deleted.
	ReadOnly bool

	Rules RuleSet

	// ResourceVersion is the store's concurrency token. Update and Delete
	// fail with ErrConflict when it no longer matches the stored record.
	ResourceVersion string

	// UID and CreatedAt are assigned by the store.
	UID       string
	CreatedAt time.Time
}

// Clone returns a deep copy of p.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	out := *p
	out.Rules = p.Rules.Clone()
	return &out
}

// Validate checks the key and the rule set.
func (p *Policy) Validate() error {
	if err := p.Key.Validate(); err != nil {
		return err
	}
	if err := p.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}

// Evaluate resolves field against this policy's rules.
func (p *Policy) Evaluate(field string, globalDefault Decision) Decision {
	return Evaluate(p.Rules.Get(field), globalDefault)
}

// PolicyUpdate carries the mutable metadata of a policy. Nil fields are left
// unchanged.
type PolicyUpdate struct {
	Description *string
	Summary     *string
}

// IsEmpty reports whether the update changes nothing.
func (u PolicyUpdate) IsEmpty() bool {
	return u.Description == nil && u.Summary == nil
}

// ApplyTo sets the non-nil fields on p and reports whether p changed.
func (u PolicyUpdate) ApplyTo(p *Policy) bool {
	changed := false
	if u.Description != nil && *u.Description != p.Description {
		p.Description = *u.Description
		changed = true
	}
	if u.Summary != nil && *u.Summary != p.Summary {
		p.Summary = *u.Summary
		changed = true
	}
	return changed
}
