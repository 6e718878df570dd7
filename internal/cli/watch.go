package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/51D1B3/PharmacieMOS-sub001/internal/chat"
	"github.com/51D1B3/PharmacieMOS-sub001/internal/events"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the reconciliation poller and stream change events",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	cmd.Flags().Duration("interval", 0, "Poll interval override")
	cmd.Flags().Bool("json", false, "Output events as JSON")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	out := cmd.OutOrStdout()
	err = rt.service.Publisher().Subscribe("watch-cli", events.Filter{}, func(event *events.Event) {
		if jsonOutput {
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			fmt.Fprintln(out, string(payload))
			return
		}
		fmt.Fprintf(out, "%s %s conversation=%s unread=%d\n",
			event.Timestamp.Local().Format(time.TimeOnly),
			event.Type,
			event.ConversationID,
			rt.service.UnreadTotal(),
		)
	})
	if err != nil {
		return err
	}
	defer rt.service.Publisher().Unsubscribe("watch-cli")

	pollerConfig := chat.PollerConfig{Interval: rt.cfg.Sync.PollInterval}
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		pollerConfig.Interval = interval
	}

	poller := chat.NewPoller(pollerConfig, rt.service)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := poller.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return poller.Stop()
}
