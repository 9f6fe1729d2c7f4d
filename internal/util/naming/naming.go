package naming

import (
	"fmt"
	"path"
	"strings"
)

// Naming functions for policy records.

// PolicyObject returns the Kubernetes object name for a policy.
func PolicyObject(kindLower, name string) string {
	return fmt.Sprintf("%s.%s", kindLower, name)
}

// SplitPolicyObject reverses PolicyObject.
func SplitPolicyObject(object string) (kindLower, name string, ok bool) {
	return strings.Cut(object, ".")
}

// PolicyPrefix returns the object-storage prefix for policies of one kind,
// or of all kinds when kindLower is empty.
func PolicyPrefix(prefix, kindLower string) string {
	p := path.Join(prefix, "policies")
	if kindLower != "" {
		p = path.Join(p, kindLower)
	}
	return p + "/"
}

// PolicyObjectKey returns the object-storage key of a policy document.
func PolicyObjectKey(prefix, kindLower, name string) string {
	return PolicyPrefix(prefix, kindLower) + name + ".json"
}

// SplitPolicyObjectKey reverses PolicyObjectKey.
func SplitPolicyObjectKey(prefix, key string) (kindLower, name string, ok bool) {
	rest, found := strings.CutPrefix(key, PolicyPrefix(prefix, ""))
	if !found {
		return "", "", false
	}
	rest, found = strings.CutSuffix(rest, ".json")
	if !found {
		return "", "", false
	}
	kindLower, name, ok = strings.Cut(rest, "/")
	if !ok || kindLower == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return kindLower, name, true
}

// Builtin returns the name of the built-in policy for a provider kind.
func Builtin(kindLower string) string {
	return fmt.Sprintf("default-%s", kindLower)
}
