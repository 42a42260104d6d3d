// Package index notifies the external search indexer about node
// changes. Delivery is best effort: a dead broker never blocks or
// fails the mutation that triggered the notification.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultQueue is the queue the indexer consumes.
const DefaultQueue = "index"

// enqueueTimeout bounds how long a mutation waits on the broker.
const enqueueTimeout = 2 * time.Second

// Transport delivers index messages to a named queue.
type Transport interface {
	Enqueue(ctx context.Context, queue string, payload []byte) error
}

type addMessage struct {
	Op     string `json:"op"`
	NodeID string `json:"node_id"`
}

type removeMessage struct {
	Op      string   `json:"op"`
	ItemIDs []string `json:"item_ids"`
}

// Publisher emits add and remove notifications. A nil transport
// disables it; both calls become no-ops.
type Publisher struct {
	t     Transport
	queue string
	log   zerolog.Logger
}

// NewPublisher creates a publisher sending to the named queue. An
// empty queue name means DefaultQueue.
func NewPublisher(t Transport, queue string, log zerolog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{t: t, queue: queue, log: log}
}

// Added notifies the indexer that a node was created, renamed or
// moved, so its entry and breadcrumb need recomputing.
func (p *Publisher) Added(ctx context.Context, nodeID string) {
	if p.t == nil {
		return
	}
	b, _ := json.Marshal(addMessage{Op: "add", NodeID: nodeID})
	p.enqueue(ctx, b, "add")
}

// Removed notifies the indexer that the given index entries are gone.
// Empty sets are skipped.
func (p *Publisher) Removed(ctx context.Context, itemIDs []string) {
	if p.t == nil || len(itemIDs) == 0 {
		return
	}
	b, _ := json.Marshal(removeMessage{Op: "remove", ItemIDs: itemIDs})
	p.enqueue(ctx, b, "remove")
}

func (p *Publisher) enqueue(ctx context.Context, payload []byte, op string) {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()
	if err := p.t.Enqueue(ctx, p.queue, payload); err != nil {
		p.log.Warn().Err(err).Str("op", op).Msg("index notify failed")
	}
}

// --- Redis transport ---

// RedisTransport queues messages on Redis lists.
type RedisTransport struct {
	rdb *redis.Client
}

// NewRedisTransport connects to the broker at rawURL.
func NewRedisTransport(rawURL string) (*RedisTransport, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisTransport{rdb: rdb}, nil
}

func (t *RedisTransport) Enqueue(ctx context.Context, queue string, payload []byte) error {
	return t.rdb.RPush(ctx, queue, payload).Err()
}

// Close releases the broker connection.
func (t *RedisTransport) Close() error {
	return t.rdb.Close()
}

// --- Factory ---

// NewTransportFromEnv creates a transport from PAPERBASE_REDIS. An
// unset variable means index notifications are disabled (nil, nil).
func NewTransportFromEnv() (Transport, error) {
	url := os.Getenv("PAPERBASE_REDIS")
	if url == "" {
		return nil, nil
	}
	t, err := NewRedisTransport(url)
	if err != nil {
		return nil, err
	}
	return t, nil
}
