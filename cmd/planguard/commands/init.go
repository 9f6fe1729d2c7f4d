package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/planguard/cmd/planguard/handlers"
	"github.com/imamik/planguard/internal/config"
)

// Init returns the command for interactively creating planguard.yaml.
//
// Flags:
//
//	--file, -f: Path to the config file to write (default "planguard.yaml")
//	--force:    Overwrite an existing file without asking
func Init() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a planguard configuration",
		Long: `Interactively create a planguard configuration file.

The wizard asks for:

  - The policy store backend (Kubernetes, S3 or PostgreSQL)
  - Backend connection settings
  - The global default decision for fields without rules
  - Whether rules must name fields of the plan schema

Credentials are never written to the file. S3 keys and the PostgreSQL
connection string can be supplied through environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "file", "f", config.DefaultConfigFilename, "Config file to write")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file without asking")

	return cmd
}
