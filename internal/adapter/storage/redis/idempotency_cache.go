package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache implements ports.IdempotencyCache using Redis. Stored
// responses live under "<prefix>:<key>" and in-flight reservations under
// "<prefix>:lock:<key>".
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a cache whose keys are namespaced by prefix,
// e.g. "idem:refund".
func NewIdempotencyCache(client *goredis.Client, prefix string) *IdempotencyCache {
	return &IdempotencyCache{client: client, prefix: prefix}
}

func (c *IdempotencyCache) key(k string) string     { return c.prefix + ":" + k }
func (c *IdempotencyCache) lockKey(k string) string { return c.prefix + ":lock:" + k }

// Get returns the stored response for key, or nil when there is none.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}
	return val, nil
}

// Set stores the response for key and drops any reservation on it.
func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, c.key(key), value, ttl)
		pipe.Del(ctx, c.lockKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

// Reserve marks key as in flight. It returns false when another request
// holds the reservation.
func (c *IdempotencyCache) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	err := c.client.SetArgs(ctx, c.lockKey(key), 1, goredis.SetArgs{Mode: "NX", TTL: ttl}).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis idempotency reserve: %w", err)
	}
	return true, nil
}

// Release drops a reservation without storing a response, so the request
// may be retried.
func (c *IdempotencyCache) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.lockKey(key)).Err(); err != nil {
		return fmt.Errorf("redis idempotency release: %w", err)
	}
	return nil
}
