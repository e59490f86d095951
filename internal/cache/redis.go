package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript increments KEYS[1] and starts its window on the first hit.
// Returns {count, pttl}.
var incrWindowScript = redis.NewScript(`
	local count = redis.call("INCR", KEYS[1])
	if count == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl < 0 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return {count, ttl}
`)

// RedisCounter uses Redis for fixed-window counters shared by every replica.
type RedisCounter struct {
	client    redis.Scripter
	keyPrefix string
}

// RedisCounterConfig holds configuration for the Redis counter.
type RedisCounterConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisCounterConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisCounter creates a Redis-backed counter on an existing client.
func NewRedisCounter(client redis.Scripter, keyPrefix string) *RedisCounter {
	if keyPrefix == "" {
		keyPrefix = "irisk:ratelimit"
	}

	slog.Info("redis rate-limit counter initialized", "prefix", keyPrefix)
	return &RedisCounter{client: client, keyPrefix: keyPrefix}
}

// Incr increments key within its current window.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, ErrInvalidWindow
	}

	res, err := incrWindowScript.Run(ctx, c.client, []string{c.keyPrefix + ":" + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("redis incr: %w", err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("redis incr: unexpected reply length %d", len(res))
	}

	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

// Ensure RedisCounter implements Counter
var _ Counter = (*RedisCounter)(nil)
