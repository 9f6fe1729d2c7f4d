package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/planguard/cmd/planguard/handlers"
)

// Seed returns the seed command.
//
// The seed command prepares the configured store and creates the read-only
// built-in policies. Existing policies are never modified.
func Seed(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the built-in policies",
		Long: `Seed creates the read-only built-in policies default-gke, default-eks
and default-aks in the configured store.

For S3 the bucket is created when missing; for PostgreSQL the policies
table is created. Built-ins that already exist are left untouched, so the
command is safe to run repeatedly.

Example:
  planguard seed -c planguard.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Seed(cmd.Context(), opts)
		},
	}
}
