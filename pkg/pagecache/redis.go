package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "pageforge:page"

// Redis is a page store backed by Redis.
type Redis struct {
	client redis.UniversalClient
	now    func() time.Time
	prefix string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key namespace. Keys are stored as "{prefix}:{uri}".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithRedisClock replaces the time source used for freshness checks.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *Redis) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRedis creates a Redis page store.
// The client should come from pkg/redis.Open.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		now:    time.Now,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns a fresh entry for uri.
// The stored ExpiresAt is checked too, so a clock ahead of Redis still misses.
func (r *Redis) Get(ctx context.Context, uri string) (Entry, error) {
	data, err := r.client.Get(ctx, r.key(uri)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, errors.Join(ErrUnmarshal, err)
	}

	if !e.FreshAt(r.now()) {
		_ = r.client.Del(ctx, r.key(uri)).Err()
		return Entry{}, ErrNotFound
	}

	return e, nil
}

// Set writes e with a Redis TTL matching its remaining lifetime.
// Entries that are already stale are not written.
func (r *Redis) Set(ctx context.Context, e Entry) error {
	ttl := e.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, e.URI)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}

	return r.client.Set(ctx, r.key(e.URI), data, ttl).Err()
}

// Delete removes the entry for uri.
func (r *Redis) Delete(ctx context.Context, uri string) error {
	return r.client.Del(ctx, r.key(uri)).Err()
}

// Clear removes every key under the store prefix using SCAN.
func (r *Redis) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op; the client is owned by the caller.
func (r *Redis) Close() error {
	return nil
}

func (r *Redis) key(uri string) string {
	return r.prefix + ":" + uri
}

var _ Store = (*Redis)(nil)
