package notif

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// endOfStream is the wire form of the close marker. It travels in-band
// so a consumer in another process observes the close too.
const endOfStream = "null"

// RedisRelay relays events through a Redis list. Unlike the in-process
// relay it survives restarts and feeds consumers in other processes.
// The list is unbounded; trimming it is the broker operator's concern.
type RedisRelay struct {
	rdb *redis.Client
	key string
	log zerolog.Logger
}

// NewRedisRelay connects to the broker at rawURL and relays events
// through the named list.
func NewRedisRelay(rawURL, channel string, log zerolog.Logger) (*RedisRelay, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{rdb: rdb, key: channel, log: log}, nil
}

// Push appends the event to the list.
func (r *RedisRelay) Push(ctx context.Context, e Event) error {
	b, err := Encode(e)
	if err != nil {
		return err
	}
	r.log.Debug().Str("event", e.Name).Str("state", string(e.State)).Msg("relay push")
	if err := r.rdb.RPush(ctx, r.key, b).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}

// Pop blocks on the list until an event or the end-of-stream marker
// arrives.
func (r *RedisRelay) Pop(ctx context.Context) (Event, error) {
	res, err := r.rdb.BLPop(ctx, 0, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return Event{}, ErrClosed
		}
		if ctx.Err() != nil {
			return Event{}, ctx.Err()
		}
		return Event{}, fmt.Errorf("blpop: %w", err)
	}

	raw := res[1]
	if raw == endOfStream {
		return Event{}, ErrClosed
	}
	e, err := Decode([]byte(raw))
	if err != nil {
		return Event{}, err
	}
	r.log.Debug().Str("event", e.Name).Msg("relay pop")
	return e, nil
}

// End pushes the end-of-stream marker onto the list. The list is
// shared across processes, so this stops one consumer somewhere, not
// necessarily a local one. End only when the stream really is over.
func (r *RedisRelay) End(ctx context.Context) error {
	if err := r.rdb.RPush(ctx, r.key, endOfStream).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("end stream: %w", err)
	}
	return nil
}

// Close releases the broker connection. The list and any queued
// events stay behind for consumers in other processes; a process that
// merely shuts down must not end the shared stream.
func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
