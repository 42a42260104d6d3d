package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists task records with a bounded lifetime.
type Store interface {
	// Set writes a record that expires after ttl.
	Set(ctx context.Context, key string, rec Record, ttl time.Duration) error

	// Get reads a record. The second result is false when the key is
	// missing or expired.
	Get(ctx context.Context, key string) (Record, bool, error)
}

type memEntry struct {
	rec     Record
	expires time.Time
}

// MemoryStore keeps records in process memory. Expired entries are
// dropped on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

// NewMemoryStore creates an empty in-process record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry)}
}

func (m *MemoryStore) Set(_ context.Context, key string, rec Record, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{rec: rec, expires: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	if time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return Record{}, false, nil
	}
	return e.rec, true, nil
}

// RedisStore keeps records in Redis so several processes share one
// view of running tasks. Expiry rides on the key TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the Redis server at rawURL.
func NewRedisStore(rawURL string) (*RedisStore, error) {
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
	return &RedisStore{rdb: rdb}, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, b, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
