package governance

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// FieldRule holds the explicit allow and deny flags for one plan field.
// Both flags may be set at once; Evaluate resolves that case to ExplicitDeny.
type FieldRule struct {
	Allow bool `json:"allow,omitempty"`
	Deny  bool `json:"deny,omitempty"`
}

// IsZero reports whether neither flag is set.
func (r FieldRule) IsZero() bool {
	return !r.Allow && !r.Deny
}

// RuleSet maps plan field names to their rule. A field without an entry
// behaves as FieldRule{}. The set never holds an entry with both flags false.
type RuleSet map[string]FieldRule

// Get returns the rule for field, or the zero rule for unknown fields.
func (rs RuleSet) Get(field string) FieldRule {
	return rs[field]
}

// SetAllow sets the allow flag of field and reports whether the set changed.
func (rs *RuleSet) SetAllow(field string, value bool) bool {
	rule := rs.Get(field)
	if rule.Allow == value {
		return false
	}
	rule.Allow = value
	rs.put(field, rule)
	return true
}

// SetDeny sets the deny flag of field and reports whether the set changed.
func (rs *RuleSet) SetDeny(field string, value bool) bool {
	rule := rs.Get(field)
	if rule.Deny == value {
		return false
	}
	rule.Deny = value
	rs.put(field, rule)
	return true
}

func (rs *RuleSet) put(field string, rule FieldRule) {
	if rule.IsZero() {
		delete(*rs, field)
		return
	}
	if *rs == nil {
		*rs = make(RuleSet)
	}
	(*rs)[field] = rule
}

// Len returns the number of fields with at least one flag set.
func (rs RuleSet) Len() int {
	return len(rs)
}

// Fields returns the field names with a rule, sorted.
func (rs RuleSet) Fields() []string {
	fields := make([]string, 0, len(rs))
	for field := range rs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Clone returns a deep copy. The clone of a nil set is an empty set.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for field, rule := range rs {
		out[field] = rule
	}
	return out
}

// Canonicalize removes entries with both flags false. Stores call it on data
// read back from persistence.
func (rs RuleSet) Canonicalize() {
	for field, rule := range rs {
		if rule.IsZero() {
			delete(rs, field)
		}
	}
}

// Equal reports whether both sets hold the same rules.
func (rs RuleSet) Equal(other RuleSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for field, rule := range rs {
		if o, ok := other[field]; !ok || o != rule {
			return false
		}
	}
	return true
}

// Validate checks field names and canonical form.
func (rs RuleSet) Validate() error {
	for _, field := range rs.Fields() {
		if err := ValidateFieldName(field); err != nil {
			return err
		}
		if rs[field].IsZero() {
			return fmt.Errorf("field %q: rule has neither allow nor deny set", field)
		}
	}
	return nil
}

// ValidateFieldName checks that field is usable as a rule key.
func ValidateFieldName(field string) error {
	if field == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidFieldName)
	}
	if strings.IndexFunc(field, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidFieldName, field)
	}
	return nil
}
