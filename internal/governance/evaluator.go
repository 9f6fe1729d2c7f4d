package governance

// Evaluate resolves rule against the global default. Deny dominates allow;
// without either flag the default applies. A default that is not DefaultAllow
// or DefaultDeny is treated as DefaultDeny.
func Evaluate(rule FieldRule, globalDefault Decision) Decision {
	switch {
	case rule.Deny:
		return ExplicitDeny
	case rule.Allow:
		return ExplicitAllow
	case globalDefault == DefaultAllow:
		return DefaultAllow
	default:
		return DefaultDeny
	}
}

// FieldDecision pairs a field with its evaluated decision.
type FieldDecision struct {
	Field    string    `json:"field"`
	Rule     FieldRule `json:"rule"`
	Decision Decision  `json:"decision"`
}

// EvaluateFields evaluates each named field against rules. With no fields it
// evaluates every field that has a rule, in sorted order.
func EvaluateFields(rules RuleSet, globalDefault Decision, fields ...string) []FieldDecision {
	if len(fields) == 0 {
		fields = rules.Fields()
	}
	out := make([]FieldDecision, 0, len(fields))
	for _, field := range fields {
		rule := rules.Get(field)
		out = append(out, FieldDecision{
			Field:    field,
			Rule:     rule,
			Decision: Evaluate(rule, globalDefault),
		})
	}
	return out
}

// Summarize counts decisions by label.
func Summarize(decisions []FieldDecision) map[Decision]int {
	counts := make(map[Decision]int, len(allDecisions))
	for _, d := range decisions {
		counts[d.Decision]++
	}
	return counts
}
