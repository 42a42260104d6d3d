package hub

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/paperbase/paperbase/internal/notif"
)

// Forwarder drains a relay and hands each event to the hub.
type Forwarder struct {
	relay notif.Relay
	hub   *Hub
	log   zerolog.Logger
}

// NewForwarder creates a forwarder from relay to hub.
func NewForwarder(relay notif.Relay, hub *Hub, log zerolog.Logger) *Forwarder {
	return &Forwarder{relay: relay, hub: hub, log: log}
}

// Run pops events until the relay closes or the context ends. A closed
// relay is a clean stop. Events without a user are dropped: there is
// no group to deliver them to.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		ev, err := f.relay.Pop(ctx)
		if errors.Is(err, notif.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if ev.Kwargs.UserID == "" {
			f.log.Debug().Str("task", ev.Name).Msg("event without user dropped")
			continue
		}
		f.hub.Send(notif.UserGroup(ev.Kwargs.UserID), ev)
	}
}
