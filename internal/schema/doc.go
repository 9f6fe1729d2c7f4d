// Package schema supplies the plan fields that policy rules may reference.
//
// The plan JSON schema itself lives outside this repository. This package
// only needs the field names per provider kind, either from the stock plan
// definitions ([Builtin]) or from a YAML file ([LoadFile]):
//
//	GKE:
//	  - clusterUsers
//	  - domain
//	EKS:
//	  - clusterUsers
package schema
