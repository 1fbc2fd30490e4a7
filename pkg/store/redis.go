package store

import (
	"context"
	"sync"
)

// RedisClient defines the Redis operations the store needs. The method
// set is compatible with github.com/redis/go-redis/v9, so a *redis.Client
// satisfies it through a thin adapter without this package importing the
// driver.
type RedisClient interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// IsRedisNil reports whether err is the driver's missing-key error. The
// check is textual because this package does not import the driver; it
// matches redis.Nil from go-redis.
func IsRedisNil(err error) bool {
	return err != nil && err.Error() == "redis: nil"
}

// Redis is a Redis-backed store, suitable for state shared between
// processes.
type Redis struct {
	client RedisClient
	prefix string

	mu     sync.Mutex
	closed bool
}

// RedisOption configures the Redis store.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix string
}

// WithRedisPrefix sets the key prefix. Default: "filament:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *redisConfig) { c.prefix = prefix }
}

// NewRedis creates a Redis-backed store on an existing client.
func NewRedis(client RedisClient, opts ...RedisOption) *Redis {
	cfg := &redisConfig{prefix: "filament:"}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Redis{client: client, prefix: cfg.prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

// Load returns the value under key.
func (r *Redis) Load(ctx context.Context, key string) (string, bool, error) {
	if r.isClosed() {
		return "", false, ErrClosed
	}
	v, err := r.client.Get(ctx, r.key(key))
	if err != nil {
		if IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Save stores value under key.
func (r *Redis) Save(ctx context.Context, key, value string) error {
	if r.isClosed() {
		return ErrClosed
	}
	return r.client.Set(ctx, r.key(key), value)
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.isClosed() {
		return ErrClosed
	}
	return r.client.Del(ctx, r.key(key))
}

// Close marks the store closed. The underlying client is not closed, as
// it may be shared with other components.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Redis) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Prefix returns the current key prefix. This is for testing and
// debugging purposes.
func (r *Redis) Prefix() string { return r.prefix }

var _ Store = (*Redis)(nil)
