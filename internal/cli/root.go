// Package cli wires the forgeci command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the forgeci root command.
func NewRootCmd(version string) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "forgeci",
		Short:         "forgeci runs declarative CI workflows",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newValidateCmd())
	return root
}
