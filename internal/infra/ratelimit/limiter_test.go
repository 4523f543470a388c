package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_Allow(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	// 別キーは独立
	ok, err = l.Allow(ctx, "login:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.TTL("ratelimit:login:1.2.3.4") > 0)
}

func TestRedisLimiter_WindowResets(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedisLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_RedisDown(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedisLimiter(client, 1, time.Minute)
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
