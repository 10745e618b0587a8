package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inkctl",
		Short: "inkctl - operate an inkwell deployment and inspect documents",
		Long: `inkctl applies the database schema, checks and renders rich-text
documents offline, and tails the post event stream.

Documents are read from a file argument, or from stdin when the argument
is "-" or missing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newDocCmd(), newEventsCmd())
	return root
}

// readInput returns the bytes of args[0], or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
