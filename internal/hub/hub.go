// Package hub fans notification events out to live subscribers,
// grouped by delivery group name.
package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/paperbase/paperbase/internal/notif"
)

// subscriberBuffer is each subscriber's event backlog. Consumers that
// fall further behind lose events rather than stalling the fan-out.
const subscriberBuffer = 16

// Subscriber receives events for one group on C until unsubscribed.
type Subscriber struct {
	Group string
	C     chan notif.Event
}

// Hub routes events to subscribers by group.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
	log  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscriber for the group.
func (h *Hub) Subscribe(group string) *Subscriber {
	sub := &Subscriber{Group: group, C: make(chan notif.Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[group]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[group] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. The write
// lock excludes in-flight Send calls, so the close cannot race a send.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.Group]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.Group)
	}
	close(sub.C)
}

// Send delivers an event to every subscriber of the group. Subscribers
// with a full backlog are skipped.
func (h *Hub) Send(group string, ev notif.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[group] {
		select {
		case sub.C <- ev:
		default:
			h.log.Warn().Str("group", group).Msg("subscriber backlog full, event dropped")
		}
	}
}

func (h *Hub) count(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[group])
}
