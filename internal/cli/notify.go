package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paperbase/paperbase/internal/notif"
)

func init() {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Push a task event onto the relay",
		Long:  "Push a synthetic task event, e.g. to exercise watch or a connected WebSocket client.",
		Run:   runNotify,
	}

	cmd.Flags().String("relay", "", "Relay URL (default: $PAPERBASE_RELAY or memory://)")
	cmd.Flags().String("task", "ocr_document_task", "Task name")
	cmd.Flags().String("state", "started", "Task state: started, progress, success, failure")
	cmd.Flags().String("doc", "", "Document id")
	cmd.Flags().String("user", "", "User id (default: owner)")
	cmd.Flags().Int("page", 0, "Page number")
	cmd.Flags().String("lang", "", "OCR language")
	cmd.Flags().Bool("end", false, "End the stream instead of pushing an event")

	RootCmd.AddCommand(cmd)
}

func runNotify(cmd *cobra.Command, args []string) {
	task, _ := cmd.Flags().GetString("task")
	state, _ := cmd.Flags().GetString("state")
	doc, _ := cmd.Flags().GetString("doc")
	user, _ := cmd.Flags().GetString("user")
	page, _ := cmd.Flags().GetInt("page")
	lang, _ := cmd.Flags().GetString("lang")
	end, _ := cmd.Flags().GetBool("end")

	relay, err := notif.Open(getRelayURL(cmd), "", cliLogger())
	if err != nil {
		exitErr("open relay", err)
	}

	defer relay.Close()

	if end {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := relay.End(ctx); err != nil {
			exitErr("notify", err)
		}
		fmt.Println(`{"ok":true,"end":true}`)
		return
	}

	if user == "" {
		user = getOwner()
	}
	ev := notif.Event{
		Name:  task,
		State: notif.State(state),
		Kwargs: notif.Payload{
			DocumentID: doc,
			UserID:     user,
			PageNum:    page,
			Lang:       lang,
		},
	}
	if !notif.ValidStates[ev.State] {
		exitErr("notify", fmt.Errorf("unknown state %q", state))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := relay.Push(ctx, ev); err != nil {
		exitErr("notify", err)
	}

	b, _ := json.Marshal(ev)
	fmt.Println(string(b))
}
