package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Print the unread badge total",
		Args:  cobra.NoArgs,
		RunE:  runUnread,
	}
}

func runUnread(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprintln(cmd.OutOrStdout(), rt.service.UnreadTotal())
	return nil
}
