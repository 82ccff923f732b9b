// Package redisstore implements handler.MetadataStore on top of Redis,
// so that upload records are visible to every server instance sharing the
// same Redis deployment.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fileup/fileupd/pkg/handler"
)

// DefaultTTL is the duration used for records set with handler.TTLDefault,
// unless overridden with WithDefaultTTL.
const DefaultTTL = 24 * time.Hour

// Option configures a RedisStore.
type Option func(s *RedisStore)

// WithLogger configures the RedisStore to use the provided structured
// logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *RedisStore) { s.logger = logger }
}

// WithKeyPrefix namespaces every key this store touches, so that several
// independent deployments can share one Redis instance.
func WithKeyPrefix(prefix string) Option {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// WithDefaultTTL overrides DefaultTTL for records set with
// handler.TTLDefault.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *RedisStore) { s.defaultTTL = ttl }
}

// RedisStore is a handler.MetadataStore backed by Redis. Records are
// JSON-encoded string values; TTLs map directly onto Redis key expiry.
type RedisStore struct {
	client     redis.UniversalClient
	logger     *slog.Logger
	keyPrefix  string
	defaultTTL time.Duration
}

// NewFromClient creates a RedisStore using an existing client. Useful when
// the caller wants to reuse a connection or pass custom client options.
func NewFromClient(client redis.UniversalClient, opts ...Option) *RedisStore {
	store := &RedisStore{
		client:     client,
		logger:     slog.Default(),
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// New connects to Redis using uri (redis://[user:pass@]host:port[/db]),
// verifies connectivity with a Ping, and returns a RedisStore.
func New(uri string, opts ...Option) (*RedisStore, error) {
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return NewFromClient(client, opts...), nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (handler.UploadRecord, bool, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return handler.UploadRecord{}, false, nil
	}
	if err != nil {
		return handler.UploadRecord{}, false, err
	}

	var rec handler.UploadRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return handler.UploadRecord{}, false, err
	}

	return rec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, rec handler.UploadRecord, ttl handler.TTL) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	var expiry time.Duration
	switch {
	case ttl.IsNone():
		// Redis treats a zero expiration as "persist".
		expiry = 0
	default:
		if secs, ok := ttl.Seconds(); ok {
			if secs == 0 {
				// A zero-second TTL means immediate expiry, which for
				// Redis is simply not keeping the record around.
				return s.client.Del(ctx, s.key(id)).Err()
			}
			expiry = time.Duration(secs) * time.Second
		} else {
			expiry = s.defaultTTL
		}
	}

	return s.client.Set(ctx, s.key(id), data, expiry).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	err := s.client.Del(ctx, s.key(id)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
