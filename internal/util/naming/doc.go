// Package naming provides consistent naming functions for stored policies.
//
// A policy key (provider kind, name) maps to a Kubernetes object name of the
// form {kind}.{name} and to an object-storage key of the form
// {prefix}/policies/{kind}/{name}.json. Provider kinds contain no dots and
// policy names are DNS-1123 labels, so both mappings are reversible.
package naming
