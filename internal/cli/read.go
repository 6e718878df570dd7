package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <conversation-id>",
		Short: "Print a conversation and acknowledge its unread messages",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("no-ack", false, "Do not mark the conversation as read")
	return cmd
}

func runRead(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	conversation, ok := rt.service.Conversation(args[0])
	if !ok {
		return fmt.Errorf("conversation not found: %s", args[0])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		payload, err := json.MarshalIndent(conversation, "", "  ")
		if err != nil {
			return fmt.Errorf("encode conversation: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	} else {
		for _, message := range conversation.Messages {
			edited := ""
			if message.Edited {
				edited = " (edited)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s%s\n",
				message.SentAt.Local().Format("15:04"),
				message.SenderName,
				message.Text,
				edited,
			)
		}
	}

	if noAck, _ := cmd.Flags().GetBool("no-ack"); noAck {
		return nil
	}
	return rt.service.MarkAsRead(cmd.Context(), conversation.ID)
}
