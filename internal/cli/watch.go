package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/notif"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream notification events to stdout",
		Long:  "Pop events from the relay and print one JSON line each. Needs a shared relay such as redis:// to see other processes.",
		Run:   runWatch,
	}

	cmd.Flags().String("relay", "", "Relay URL (default: $PAPERBASE_RELAY or memory://)")

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	relayURL := getRelayURL(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay, err := notif.Open(relayURL, "", cliLogger())
	if err != nil {
		exitErr("open relay", err)
	}
	defer relay.Close()

	for {
		ev, err := relay.Pop(ctx)
		if errors.Is(err, notif.ErrClosed) {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			exitErr("watch", err)
		}
		b, _ := json.Marshal(ev)
		fmt.Println(string(b))
	}
}
