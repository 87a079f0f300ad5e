package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRateLimitStore(client)
	fixed := time.Unix(1_700_000_040, 0)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			result, err := store.Allow(ctx, "203.0.113.7:public_links", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, 3-i, result.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		result, err := store.Allow(ctx, "203.0.113.7:public_links", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "203.0.113.8:public_links", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(4), result.Remaining)
	})

	t.Run("window expiry is set", func(t *testing.T) {
		ttl := mr.TTL("ratelimit:203.0.113.8:public_links:28333334")
		assert.Equal(t, 61*time.Second, ttl)
	})

	t.Run("reset is the end of the window", func(t *testing.T) {
		result, err := store.Allow(ctx, "owner-1:refunds", 10, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1_700_000_040/60+1)*60, result.ResetAt)
	})

	t.Run("next window starts fresh", func(t *testing.T) {
		_, err := store.Allow(ctx, "owner-2:links", 1, time.Minute)
		require.NoError(t, err)
		result, err := store.Allow(ctx, "owner-2:links", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		fixed = fixed.Add(time.Minute)
		result, err = store.Allow(ctx, "owner-2:links", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}
