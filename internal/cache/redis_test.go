package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/cache"
	"github.com/oggyb/nameless/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()

	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c, mr
}

func TestHSetEx_ReplacesAndExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.HSetEx(ctx, "k", map[string]string{"code": "111111", "old": "x"}, time.Minute))
	require.NoError(t, c.HSetEx(ctx, "k", map[string]string{"code": "222222"}, time.Minute))

	got, err := c.HGetAll(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"code": "222222"}, got)

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(time.Minute + time.Second)

	got, err = c.HGetAll(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHSetEx_RejectsEmptyInput(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	assert.Error(t, c.HSetEx(ctx, "k", nil, time.Minute))
	assert.Error(t, c.HSetEx(ctx, "k", map[string]string{"a": "b"}, 0))
}

func TestDel(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, c.HSetEx(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}
