package ratelimit

import (
	"context"
	"fmt"
	"time"

	"uptech/internal/config"

	"github.com/redis/go-redis/v9"
)

// 固定ウィンドウ。最初のINCRでTTLを張る
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

type RedisLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	prefix string
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    int64(max),
		window: window,
		prefix: "ratelimit:",
	}
}

// Allow はkeyのウィンドウ内カウントが上限以下ならtrue
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return count <= l.max, nil
}

// NopLimiter はRedis未設定時（常に許可）
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
