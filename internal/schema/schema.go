package schema

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/imamik/planguard/internal/governance"
)

// Static is an in-memory schema provider.
type Static map[governance.ProviderKind][]string

// FieldNames implements governance.SchemaProvider. The result is sorted and
// owned by the caller. A kind without fields yields an empty list.
func (s Static) FieldNames(_ context.Context, kind governance.ProviderKind) ([]string, error) {
	fields := append([]string(nil), s[kind]...)
	sort.Strings(fields)
	return fields, nil
}

// Kinds returns the provider kinds that have fields, in display order.
func (s Static) Kinds() []governance.ProviderKind {
	var kinds []governance.ProviderKind
	for _, k := range governance.KnownProviderKinds() {
		if len(s[k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Parse reads a YAML mapping of provider kind to field names. Kinds are
// matched case-insensitively and duplicate fields are dropped.
func Parse(data []byte) (Static, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	out := make(Static, len(raw))
	for name, fields := range raw {
		kind, err := governance.ParseProviderKind(name)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(fields)+len(out[kind]))
		for _, f := range out[kind] {
			seen[f] = true
		}
		for _, f := range fields {
			if err := governance.ValidateFieldName(f); err != nil {
				return nil, fmt.Errorf("%s: %w", kind, err)
			}
			if seen[f] {
				continue
			}
			seen[f] = true
			out[kind] = append(out[kind], f)
		}
		sort.Strings(out[kind])
	}
	return out, nil
}

// LoadFile reads a schema file.
func LoadFile(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return s, nil
}

// Contains reports whether field is part of kind's schema.
func Contains(ctx context.Context, p governance.SchemaProvider, kind governance.ProviderKind, field string) (bool, error) {
	fields, err := p.FieldNames(ctx, kind)
	if err != nil {
		return false, err
	}
	for _, f := range fields {
		if f == field {
			return true, nil
		}
	}
	return false, nil
}

// Unknown returns the fields of rules that kind's schema does not define.
func Unknown(ctx context.Context, p governance.SchemaProvider, kind governance.ProviderKind, rules governance.RuleSet) ([]string, error) {
	fields, err := p.FieldNames(ctx, kind)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}
	var unknown []string
	for _, f := range rules.Fields() {
		if !known[f] {
			unknown = append(unknown, f)
		}
	}
	return unknown, nil
}
