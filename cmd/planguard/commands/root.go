// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/planguard/cmd/planguard/handlers"
)

// Root returns the root command for the planguard CLI.
//
// The root command owns the flags shared by every policy command: the
// config file, the output format and verbose logging.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "planguard",
		Short:         "Govern which plan fields may change, per cloud provider",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to planguard.yaml (default: search the working directory and its parents)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", handlers.OutputText, "Output format: text, json or yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log store operations to stderr")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return handlers.OutputFormats(), cobra.ShellCompDirectiveNoFileComp
	})

	// Policy commands
	cmd.AddCommand(Create(opts))
	cmd.AddCommand(Update(opts))
	cmd.AddCommand(Delete(opts))
	cmd.AddCommand(Get(opts))
	cmd.AddCommand(List(opts))

	// Rule commands
	cmd.AddCommand(Allow(opts))
	cmd.AddCommand(Deny(opts))
	cmd.AddCommand(Evaluate(opts))

	// Setup and utility commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Seed(opts))
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
