package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <conversation-id> <message-id> <text>...",
		Short: "Edit a previously sent message",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	text := strings.Join(args[2:], " ")
	return rt.service.EditMessage(cmd.Context(), args[0], args[1], text)
}
