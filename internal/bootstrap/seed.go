// Package bootstrap seeds the read-only built-in policies, one per provider
// kind, named "default-<kind>".
package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/util/naming"
)

var stockRules = map[governance.ProviderKind]governance.RuleSet{
	governance.ProviderGKE: {
		"clusterUsers":             {Allow: true},
		"description":              {Allow: true},
		"nodeCount":                {Allow: true},
		"authorizedMasterNetworks": {Deny: true},
		"kubernetesVersion":        {Deny: true},
		"privateCluster":           {Deny: true},
		"releaseChannel":           {Deny: true},
	},
	governance.ProviderEKS: {
		"clusterUsers":         {Allow: true},
		"description":          {Allow: true},
		"nodeCount":            {Allow: true},
		"endpointPublicAccess": {Deny: true},
		"kubernetesVersion":    {Deny: true},
		"publicAccessCidrs":    {Deny: true},
		"subnetIds":            {Deny: true},
		"vpcId":                {Deny: true},
	},
	governance.ProviderAKS: {
		"clusterUsers":       {Allow: true},
		"description":        {Allow: true},
		"nodeCount":          {Allow: true},
		"authorizedIpRanges": {Deny: true},
		"kubernetesVersion":  {Deny: true},
		"networkPlugin":      {Deny: true},
		"privateCluster":     {Deny: true},
	},
}

// BuiltinKey returns the key of the built-in policy for kind.
func BuiltinKey(kind governance.ProviderKind) governance.PolicyKey {
	return governance.PolicyKey{ProviderKind: kind, Name: naming.Builtin(kind.Lower())}
}

// Builtins returns the built-in policies in provider display order.
func Builtins() []*governance.Policy {
	kinds := governance.KnownProviderKinds()
	out := make([]*governance.Policy, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, &governance.Policy{
			Key:         BuiltinKey(kind),
			Description: fmt.Sprintf("Built-in %s plan policy", kind),
			Summary:     "Platform defaults",
			ReadOnly:    true,
			Rules:       stockRules[kind].Clone(),
		})
	}
	return out
}

// Result reports what Seed did per built-in policy.
type Result struct {
	Created  []governance.PolicyKey
	Existing []governance.PolicyKey
	// Shadowed lists built-in names taken by a writable user policy.
	Shadowed []governance.PolicyKey
}

// Seed creates every missing built-in policy. Existing records are never
// modified, so running it repeatedly is safe.
func Seed(ctx context.Context, store governance.Store, log logr.Logger) (Result, error) {
	var res Result
	for _, builtin := range Builtins() {
		existing, err := store.Get(ctx, builtin.Key)
		switch {
		case err == nil:
			if existing.ReadOnly {
				res.Existing = append(res.Existing, builtin.Key)
			} else {
				log.Info("Built-in policy name is used by a writable policy", "provider", builtin.Key.ProviderKind.String(), "policy", builtin.Key.Name)
				res.Shadowed = append(res.Shadowed, builtin.Key)
			}
			continue
		case !governance.IsNotFound(err):
			return res, fmt.Errorf("failed to read built-in policy %s: %w", builtin.Key, err)
		}

		if _, err := store.Create(ctx, builtin); err != nil {
			if governance.IsDuplicate(err) {
				res.Existing = append(res.Existing, builtin.Key)
				continue
			}
			return res, fmt.Errorf("failed to create built-in policy %s: %w", builtin.Key, err)
		}
		log.Info("Seeded built-in policy", "provider", builtin.Key.ProviderKind.String(), "policy", builtin.Key.Name, "rules", builtin.Rules.Len())
		res.Created = append(res.Created, builtin.Key)
	}
	return res, nil
}
