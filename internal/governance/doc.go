// Package governance implements the plan governance policy model.
//
// A [Policy] belongs to one provider kind (GKE, EKS, AKS) and owns a
// [RuleSet] mapping plan fields to a [FieldRule]. [Evaluate] resolves a rule
// and a global default into one of four [Decision] values:
//
//	deny set           -> ExplicitDeny (deny always wins)
//	allow set          -> ExplicitAllow
//	neither set        -> the global default (DefaultAllow or DefaultDeny)
//
// Persistence is abstracted by [Store]; the plan schema that defines valid
// field names is supplied through [SchemaProvider].
package governance
