package notif

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// ErrClosed signals the end of the stream: the stream was ended and
// every event pushed before the end has been consumed.
var ErrClosed = errors.New("relay closed")

// DefaultChannel is the list name broker backends use when none is
// given.
const DefaultChannel = "notifications"

// Relay moves events from producers to consumers in FIFO order.
type Relay interface {
	// Push enqueues an event. It blocks while the relay is at
	// capacity, until ctx is done.
	Push(ctx context.Context, e Event) error

	// Pop dequeues the next event, blocking until one arrives, the
	// stream ends (ErrClosed) or ctx is done.
	Pop(ctx context.Context) (Event, error)

	// End marks the end of the stream. Events pushed before the end
	// are still delivered; consumers then observe ErrClosed.
	End(ctx context.Context) error

	// Close releases the relay's resources. It does not end the
	// stream for consumers in other processes.
	Close() error
}

// Open selects a relay backend by URL scheme: "memory://" for the
// in-process queue, "redis://host:port/db" for the broker-backed one.
// The channel names the list used by broker backends.
func Open(rawURL, channel string, log zerolog.Logger) (Relay, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	switch u.Scheme {
	case "memory":
		return NewMemoryRelay(DefaultCapacity, log), nil
	case "redis", "rediss":
		return NewRedisRelay(rawURL, channel, log)
	default:
		return nil, fmt.Errorf("unknown relay scheme %q", u.Scheme)
	}
}
