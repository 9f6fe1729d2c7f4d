package resource

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/util/labels"
	"github.com/imamik/planguard/internal/util/naming"
)

// ObjectName returns the document name of the policy identified by key.
func ObjectName(key governance.PolicyKey) string {
	return naming.PolicyObject(key.ProviderKind.Lower(), key.Name)
}

// ToObject builds a PlanPolicy document from p. managedBy is recorded in the
// app.kubernetes.io/managed-by label.
func ToObject(p *governance.Policy, managedBy string) *v1alpha1.PlanPolicy {
	obj := &v1alpha1.PlanPolicy{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.GroupVersion.String(),
			Kind:       v1alpha1.Kind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: ObjectName(p.Key),
			Labels: labels.NewLabelBuilder(p.Key.ProviderKind.String(), p.Key.Name).
				WithBuiltin(p.ReadOnly).
				WithManagedBy(managedBy).
				Build(),
			ResourceVersion: p.ResourceVersion,
			UID:             types.UID(p.UID),
		},
		Spec: v1alpha1.PlanPolicySpec{
			ProviderKind: p.Key.ProviderKind.String(),
			PolicyName:   p.Key.Name,
			ReadOnly:     p.ReadOnly,
		},
	}
	if !p.CreatedAt.IsZero() {
		obj.CreationTimestamp = metav1.NewTime(p.CreatedAt)
	}
	ApplyMutable(obj, p)
	return obj
}

// ApplyMutable copies the user-editable parts of p (description, summary and
// rules) into obj, leaving identity and the read-only flag alone.
func ApplyMutable(obj *v1alpha1.PlanPolicy, p *governance.Policy) {
	obj.Spec.Description = p.Description
	obj.Spec.Summary = p.Summary
	obj.Spec.Rules = SpecRules(p.Rules)
}

// FromObject converts a PlanPolicy document into a policy. Rules are
// canonicalized so that entries with both flags false never surface.
func FromObject(obj *v1alpha1.PlanPolicy) (*governance.Policy, error) {
	kind, err := governance.ParseProviderKind(obj.Spec.ProviderKind)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", obj.Name, err)
	}
	key := governance.PolicyKey{ProviderKind: kind, Name: obj.Spec.PolicyName}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("object %s: %w", obj.Name, err)
	}
	if obj.Name != "" && obj.Name != ObjectName(key) {
		return nil, fmt.Errorf("object %s: name does not match policy %s", obj.Name, key)
	}

	return &governance.Policy{
		Key:             key,
		Description:     obj.Spec.Description,
		Summary:         obj.Spec.Summary,
		ReadOnly:        obj.Spec.ReadOnly,
		Rules:           RuleSet(obj.Spec.Rules),
		ResourceVersion: obj.ResourceVersion,
		UID:             string(obj.UID),
		CreatedAt:       obj.CreationTimestamp.Time,
	}, nil
}

// SpecRules converts a rule set to its document form. An empty set yields nil
// so that the rules key is omitted.
func SpecRules(rs governance.RuleSet) map[string]v1alpha1.FieldRule {
	if rs.Len() == 0 {
		return nil
	}
	out := make(map[string]v1alpha1.FieldRule, rs.Len())
	for field, rule := range rs {
		if rule.IsZero() {
			continue
		}
		out[field] = v1alpha1.FieldRule{Allow: rule.Allow, Deny: rule.Deny}
	}
	return out
}

// RuleSet converts document rules to a canonical rule set.
func RuleSet(rules map[string]v1alpha1.FieldRule) governance.RuleSet {
	out := make(governance.RuleSet, len(rules))
	for field, rule := range rules {
		out[field] = governance.FieldRule{Allow: rule.Allow, Deny: rule.Deny}
	}
	out.Canonicalize()
	return out
}
