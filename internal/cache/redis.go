package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/nameless/internal/config"
)

// RedisCache is the keyed-expiry store: whole hashes that vanish after a TTL.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// HSetEx replaces the hash at key with fields and sets its TTL.
//
// Behavior:
//   - The previous hash is dropped first, so no stale field survives.
//   - DEL, HSET and EXPIRE run in one MULTI/EXEC.
//
// Example:
//
//	c.HSetEx(ctx, "pending:registration:alice", map[string]string{"code": "123456"}, 5*time.Minute)
func (c *RedisCache) HSetEx(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if len(fields) == 0 {
		return fmt.Errorf("hsetex %s: no fields", key)
	}
	if ttl <= 0 {
		return fmt.Errorf("hsetex %s: ttl must be positive", key)
	}

	values := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}

	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// HGetAll returns the hash at key. A missing or expired key yields an empty map.
func (c *RedisCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.Client.HGetAll(ctx, key).Result()
}

// TTL reports the remaining lifetime of key (negative when absent).
func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.Client.TTL(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}
