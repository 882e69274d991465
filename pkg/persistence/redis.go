package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
)

// DefaultRedisPrefix prefixes all keys written by RedisStore.
const DefaultRedisPrefix = "sdc:snapshot:"

// RedisStore keeps snapshots in Redis, one key per device name. An index
// set records every name with its last save time.
type RedisStore struct {
	client *backend.Client
	name   string
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the expiration of stored snapshots. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store for the device name on a new client.
func NewRedisStore(address, password string, db int, name string, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, name, opts...)
}

// NewRedisStoreFromClient creates a store for the device name on an
// existing client.
func NewRedisStoreFromClient(client *backend.Client, name string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		name:   name,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key() string {
	return s.prefix + s.name
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Save writes the snapshot and updates the index.
func (s *RedisStore) Save(ctx context.Context, snap *mdib.Snapshot) error {
	rec := newRecord(snap)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(rec.SavedAt.Unix()),
		Member: s.name,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load reads the stored record.
// Returns nil, nil if nothing is stored under the name.
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	val, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load from redis: %w", err)
	}

	rec := &Record{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if err := rec.check(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Clear removes the snapshot and its index entry.
func (s *RedisStore) Clear(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key())
	pipe.ZRem(ctx, s.indexKey(), s.name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear redis: %w", err)
	}
	return nil
}

// Names lists the device names with a stored snapshot, most recent first.
func (s *RedisStore) Names(ctx context.Context) ([]string, error) {
	return s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
