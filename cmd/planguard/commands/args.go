package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// notExactly rejects exactly n positional arguments.
func notExactly(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == n {
			return fmt.Errorf("expected 0 or %d args, received %d", n+1, n)
		}
		return nil
	}
}
