package governance

import (
	"fmt"
	"strings"
)

// ProviderKind identifies the cloud provider a plan targets.
type ProviderKind string

const (
	// ProviderGKE is Google Kubernetes Engine
	ProviderGKE ProviderKind = "GKE"
	// ProviderEKS is Amazon Elastic Kubernetes Service
	ProviderEKS ProviderKind = "EKS"
	// ProviderAKS is Azure Kubernetes Service
	ProviderAKS ProviderKind = "AKS"
)

var knownProviderKinds = []ProviderKind{ProviderGKE, ProviderEKS, ProviderAKS}

// KnownProviderKinds returns all supported provider kinds in display order.
func KnownProviderKinds() []ProviderKind {
	out := make([]ProviderKind, len(knownProviderKinds))
	copy(out, knownProviderKinds)
	return out
}

// ParseProviderKind parses a provider kind case-insensitively.
func ParseProviderKind(s string) (ProviderKind, error) {
	candidate := ProviderKind(strings.ToUpper(strings.TrimSpace(s)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q (must be one of %v)", ErrInvalidProviderKind, s, knownProviderKinds)
}

// IsValid reports whether k is a supported provider kind.
func (k ProviderKind) IsValid() bool {
	for _, known := range knownProviderKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k ProviderKind) String() string {
	return string(k)
}

// Lower returns the lowercase form used in resource names and object keys.
func (k ProviderKind) Lower() string {
	return strings.ToLower(string(k))
}
