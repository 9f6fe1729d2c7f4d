package governance

import (
	"fmt"
	"strings"
)

// Decision is the resolved outcome of evaluating a field rule.
type Decision string

const (
	// ExplicitAllow means the policy grants the field.
	ExplicitAllow Decision = "ExplicitAllow"
	// ExplicitDeny means the policy locks the field.
	ExplicitDeny Decision = "ExplicitDeny"
	// DefaultAllow means no rule applies and the global default allows.
	DefaultAllow Decision = "DefaultAllow"
	// DefaultDeny means no rule applies and the global default denies.
	DefaultDeny Decision = "DefaultDeny"
)

var allDecisions = []Decision{ExplicitAllow, ExplicitDeny, DefaultAllow, DefaultDeny}

// Decisions returns the four canonical decisions.
func Decisions() []Decision {
	out := make([]Decision, len(allDecisions))
	copy(out, allDecisions)
	return out
}

func (d Decision) String() string {
	return string(d)
}

// IsValid reports whether d is one of the canonical decisions.
func (d Decision) IsValid() bool {
	switch d {
	case ExplicitAllow, ExplicitDeny, DefaultAllow, DefaultDeny:
		return true
	}
	return false
}

// IsDefault reports whether d can serve as a global default.
func (d Decision) IsDefault() bool {
	return d == DefaultAllow || d == DefaultDeny
}

// Allowed reports whether a team may change the field.
func (d Decision) Allowed() bool {
	return d == ExplicitAllow || d == DefaultAllow
}

// Explicit reports whether a rule, rather than the default, produced d.
func (d Decision) Explicit() bool {
	return d == ExplicitAllow || d == ExplicitDeny
}

// Description returns the human readable text shown next to a field.
func (d Decision) Description() string {
	switch d {
	case ExplicitAllow:
		return "Allowed by policy"
	case ExplicitDeny:
		return "Denied by policy"
	case DefaultAllow:
		return "Allowed by default"
	case DefaultDeny:
		return "Denied by default"
	default:
		return "Unknown"
	}
}

// ParseDecision parses one of the four canonical labels, ignoring case.
func ParseDecision(s string) (Decision, error) {
	trimmed := strings.TrimSpace(s)
	for _, d := range allDecisions {
		if strings.EqualFold(trimmed, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown decision %q", s)
}

// ParseDefault parses a global default. Besides the canonical labels it
// accepts "allow" and "deny".
func ParseDefault(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return DefaultAllow, nil
	case "deny":
		return DefaultDeny, nil
	}
	d, err := ParseDecision(s)
	if err != nil || !d.IsDefault() {
		return "", fmt.Errorf("%w: %q (must be DefaultAllow or DefaultDeny)", ErrInvalidDefault, s)
	}
	return d, nil
}
