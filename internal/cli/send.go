package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/models"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <counterparty-id> <text>...",
		Short: "Send a message to a counterparty",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSend,
	}
	cmd.Flags().String("counterparty-name", "", "Counterparty display name")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	counterpartyName, _ := cmd.Flags().GetString("counterparty-name")
	counterparty := models.Identity{
		ID:          args[0],
		DisplayName: counterpartyName,
		Role:        rt.identity.Role.Counterpart(),
	}
	text := strings.Join(args[1:], " ")

	message, err := rt.service.SendMessage(cmd.Context(), counterparty, text)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		payload, err := json.MarshalIndent(message, "", "  ")
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), message.ID)
	return nil
}
