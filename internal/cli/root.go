package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the payflowctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "payflowctl",
		Short: "PayFlow ledger tooling",
		Long: `payflowctl runs the PayFlow allocation engine offline, records payments
against a running API and triggers reminder passes.`,
		SilenceUsage: true,
	}

	root.AddCommand(newAllocateCmd())
	root.AddCommand(newProjectCmd())
	root.AddCommand(newPayCmd())
	root.AddCommand(newRemindersCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
