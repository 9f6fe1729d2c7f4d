package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/planguard/cmd/planguard/handlers"
)

// Allow returns the allow command.
func Allow(opts *handlers.Options) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "allow PROVIDER NAME FIELD...",
		Short: "Set or clear the allow flag of plan fields",
		Long: `Allow marks plan fields as explicitly allowed by a policy.

The deny flag of each field is left untouched, and a field that is both
allowed and denied evaluates to ExplicitDeny. Use --unset to clear the
allow flag again.

Examples:
  planguard allow GKE strict-prod nodeCount machineType
  planguard allow GKE strict-prod nodeCount --unset`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Allow(cmd.Context(), opts, handlers.RuleInput{
				ProviderKind: args[0],
				Name:         args[1],
				Fields:       args[2:],
				Unset:        unset,
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the allow flag instead of setting it")

	return cmd
}

// Deny returns the deny command.
func Deny(opts *handlers.Options) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "deny PROVIDER NAME FIELD...",
		Short: "Set or clear the deny flag of plan fields",
		Long: `Deny marks plan fields as explicitly denied by a policy.

Deny takes precedence over allow. The allow flag of each field is left
untouched. Use --unset to clear the deny flag again.

Examples:
  planguard deny EKS strict-prod enablePublicEndpoint
  planguard deny EKS strict-prod enablePublicEndpoint --unset`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Deny(cmd.Context(), opts, handlers.RuleInput{
				ProviderKind: args[0],
				Name:         args[1],
				Fields:       args[2:],
				Unset:        unset,
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the deny flag instead of setting it")

	return cmd
}

// Evaluate returns the evaluate command.
func Evaluate(opts *handlers.Options) *cobra.Command {
	var in handlers.EvaluateInput

	cmd := &cobra.Command{
		Use:   "evaluate PROVIDER NAME [FIELD...]",
		Short: "Decide whether plan fields may change under a policy",
		Long: `Evaluate resolves each field to one of ExplicitAllow, ExplicitDeny,
DefaultAllow or DefaultDeny.

Without fields every field of the plan schema is evaluated when the schema
is strict, and every field with a rule otherwise. The default decision comes
from the config file unless --default is given.

Examples:
  planguard evaluate GKE default-gke nodeCount
  planguard evaluate AKS strict-prod --default allow --fail-on-deny`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ProviderKind, in.Name, in.Fields = args[0], args[1], args[2:]
			return handlers.Evaluate(cmd.Context(), opts, in)
		},
	}

	cmd.Flags().StringVar(&in.Default, "default", "", "Global default decision: DefaultAllow or DefaultDeny (allow and deny are accepted)")
	cmd.Flags().BoolVar(&in.FailOnDeny, "fail-on-deny", false, "Exit with an error when any field is denied")

	return cmd
}
