package notif

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the buffer size of the in-process relay.
const DefaultCapacity = 64

// MemoryRelay is a bounded in-process relay. End enqueues a nil frame
// as the end-of-stream marker; it sits behind every event pushed
// before it, and exactly one consumer receives it. Consumers blocked
// after that observe ErrClosed as well.
type MemoryRelay struct {
	frames chan []byte
	done   chan struct{}

	// mu orders Push against End: a frame accepted by Push is always
	// enqueued before the end-of-stream marker.
	mu     sync.Mutex
	closed bool

	doneOnce sync.Once

	log zerolog.Logger
}

// NewMemoryRelay creates an in-process relay holding up to capacity
// events.
func NewMemoryRelay(capacity int, log zerolog.Logger) *MemoryRelay {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryRelay{
		frames: make(chan []byte, capacity),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Push enqueues an event, blocking while the relay is full.
func (m *MemoryRelay) Push(ctx context.Context, e Event) error {
	b, err := Encode(e)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.log.Debug().Str("event", e.Name).Str("state", string(e.State)).Msg("relay push")
	select {
	case m.frames <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next event in FIFO order.
func (m *MemoryRelay) Pop(ctx context.Context) (Event, error) {
	select {
	case <-m.done:
		return Event{}, ErrClosed
	default:
	}

	select {
	case b := <-m.frames:
		if b == nil {
			// End-of-stream marker: everything pushed before the
			// end has been drained.
			m.doneOnce.Do(func() { close(m.done) })
			return Event{}, ErrClosed
		}
		e, err := Decode(b)
		if err != nil {
			return Event{}, err
		}
		m.log.Debug().Str("event", e.Name).Msg("relay pop")
		return e, nil
	case <-m.done:
		return Event{}, ErrClosed
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// End marks the end of the stream. It blocks until the marker is
// accepted, which keeps the marker ordered after all prior pushes.
// Further pushes fail with ErrClosed; repeated calls are no-ops.
func (m *MemoryRelay) End(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	select {
	case m.frames <- nil:
		m.closed = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream. The in-process relay holds nothing beyond
// its buffer, so releasing it and ending the stream coincide.
func (m *MemoryRelay) Close() error {
	return m.End(context.Background())
}
