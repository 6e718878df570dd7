package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List the viewer's conversations",
		Args:  cobra.NoArgs,
		RunE:  runConversations,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runConversations(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	conversations := rt.service.Conversations()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		payload, err := json.MarshalIndent(conversations, "", "  ")
		if err != nil {
			return fmt.Errorf("encode conversations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	if len(conversations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no conversations")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARTICIPANT\tUNREAD\tLAST ACTIVITY\tLAST MESSAGE")
	for _, conversation := range conversations {
		lastActivity := ""
		if !conversation.LastActivityAt.IsZero() {
			lastActivity = conversation.LastActivityAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			conversation.ID,
			conversation.ParticipantName,
			conversation.UnreadCount,
			lastActivity,
			truncate(conversation.LastMessage, 40),
		)
	}
	return w.Flush()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
