// Package cli implements the pharmchat developer CLI over the chat core.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pharmchat",
		Short:         "Customer/support chat over per-identity slot stores",
		Long:          "pharmchat exchanges messages between a customer and the pharmacy support side through two independently persisted slot stores reconciled by polling.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	cmd.PersistentFlags().String("config", "", "Config file path")
	cmd.PersistentFlags().String("as", "", "Acting identity id")
	cmd.PersistentFlags().String("name", "", "Acting identity display name")
	cmd.PersistentFlags().String("role", "customer", "Acting identity role (customer, support)")
	cmd.PersistentFlags().String("backend", "", "Storage backend override (file, sqlite)")
	cmd.PersistentFlags().String("support-id", "", "Support identity id override")
	cmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newSendCmd(),
		newConversationsCmd(),
		newReadCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newUnreadCmd(),
		newWatchCmd(),
	)

	return cmd
}
