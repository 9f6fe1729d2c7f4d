package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/planguard/cmd/planguard/handlers"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/util/ptr"
)

// completeProviderKind completes the provider kind in the first position.
func completeProviderKind(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	kinds := governance.KnownProviderKinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// Create returns the create command.
//
// Without arguments on a terminal the command asks for the provider kind,
// name, description and summary.
func Create(opts *handlers.Options) *cobra.Command {
	var in handlers.CreateInput

	cmd := &cobra.Command{
		Use:   "create [PROVIDER NAME]",
		Short: "Create a policy",
		Long: `Create a writable policy with no rules for a provider kind.

PROVIDER is one of GKE, EKS or AKS (case-insensitive). NAME must be a
lowercase DNS label and unique within the provider kind. Run without
arguments on a terminal to fill in the policy interactively.

Examples:
  planguard create GKE strict-prod --description "Production clusters"
  planguard create`,
		Args:              cobra.MatchAll(cobra.MaximumNArgs(2), notExactly(1)),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				in.ProviderKind, in.Name = args[0], args[1]
			}
			return handlers.Create(cmd.Context(), opts, in)
		},
	}

	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Policy description")
	cmd.Flags().StringVarP(&in.Summary, "summary", "s", "", "Short policy summary")

	return cmd
}

// Update returns the update command.
func Update(opts *handlers.Options) *cobra.Command {
	var description, summary string

	cmd := &cobra.Command{
		Use:   "update PROVIDER NAME",
		Short: "Change a policy's description or summary",
		Long: `Update changes the description and summary of a writable policy.
Only the flags that are given are changed. Built-in policies are read-only.

Example:
  planguard update GKE strict-prod --summary "No public endpoints"`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := handlers.UpdateInput{ProviderKind: args[0], Name: args[1]}
			if cmd.Flags().Changed("description") {
				in.Description = ptr.To(description)
			}
			if cmd.Flags().Changed("summary") {
				in.Summary = ptr.To(summary)
			}
			return handlers.Update(cmd.Context(), opts, in)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "New policy description")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "New policy summary")

	return cmd
}

// Delete returns the delete command.
func Delete(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PROVIDER NAME",
		Short: "Delete a policy",
		Long: `Delete removes a writable policy and all of its rules.

Built-in policies cannot be deleted.

Example:
  planguard delete GKE strict-prod`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Delete(cmd.Context(), opts, args[0], args[1])
		},
	}
}

// Get returns the get command.
func Get(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:               "get PROVIDER NAME",
		Short:             "Show a policy and its rules",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Get(cmd.Context(), opts, args[0], args[1])
		},
	}
}

// List returns the list command.
func List(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "list [PROVIDER]",
		Aliases: []string{"ls"},
		Short:   "List policies",
		Long: `List shows the policies of one provider kind, or of every provider
kind when none is given, sorted by provider kind and name.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeProviderKind,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind string
			if len(args) == 1 {
				kind = args[0]
			}
			return handlers.List(cmd.Context(), opts, kind)
		},
	}
}
