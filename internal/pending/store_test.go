package pending_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/cache"
	"github.com/oggyb/nameless/internal/config"
	"github.com/oggyb/nameless/internal/pending"
)

func setupStore(t *testing.T) (*pending.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	return pending.NewRedisStore(cache.NewRedisCache(cfg)), mr
}

func TestRedisStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	rec := pending.Record{Code: 123456, Payload: map[string]string{"new_email": "a@b.io"}}
	require.NoError(t, s.Put(ctx, pending.ActionChangeEmail, "user-1", rec, 30*time.Second))

	assert.Equal(t, "123456", mr.HGet("pending:change-email:user-1", "email_code"))

	got, ok, err := s.Get(ctx, pending.ActionChangeEmail, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	mr.FastForward(31 * time.Second)

	_, ok, err = s.Get(ctx, pending.ActionChangeEmail, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ActionsDoNotShareKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	require.NoError(t, s.Put(ctx, pending.ActionChangeEmail, "u", pending.Record{Code: 111111, Payload: map[string]string{"new_email": "x@y.io"}}, time.Minute))
	require.NoError(t, s.Put(ctx, pending.ActionChangePassword, "u", pending.Record{Code: 222222, Payload: map[string]string{"new_password": "abc123"}}, time.Minute))

	email, ok, err := s.Get(ctx, pending.ActionChangeEmail, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 111111, email.Code)

	require.NoError(t, s.Delete(ctx, pending.ActionChangePassword, "u"))
	_, ok, err = s.Get(ctx, pending.ActionChangePassword, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_MalformedCode(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	mr.HSet(pending.Key(pending.ActionDeleteAccount, "u"), "email_code", "abc")

	_, _, err := s.Get(ctx, pending.ActionDeleteAccount, "u")
	assert.Error(t, err)
}
