package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Define root command
	rootCmd := &cobra.Command{
		Use:   "guardctl",
		Short: "Operator toolkit for the gateway security guard layer",
	}

	// Add subcommands
	rootCmd.AddCommand(
		NewServeCommand(),
		NewEvalCommand(),
		NewMaskCommand(),
		NewHashCommand(),
		NewCheckCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
