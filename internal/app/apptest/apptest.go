// Package apptest builds a fully wired AppContext on sqlite, miniredis and the
// in-memory index for service and transport tests.
package apptest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/cache"
	"github.com/oggyb/nameless/internal/config"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/db/dbtest"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/mail/mailtest"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/security"
)

// Env is a test AppContext plus handles on its fakes.
type Env struct {
	App   *app.AppContext
	Redis *miniredis.Miniredis
	Mails *mailtest.Recorder
	Index *search.Memory
}

// Config returns settings suitable for tests.
func Config(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Algorithm = "HS256"
	cfg.JWT.MailTTL = 5 * time.Minute
	cfg.JWT.AccessTTL = 15 * time.Minute
	cfg.JWT.RefreshTTL = 24 * time.Hour
	cfg.Audit.Dir = t.TempDir()
	cfg.Audit.RotationMB = 1
	cfg.Audit.RetentionDays = 1
	cfg.Admin.MasterKey = "master"
	return cfg
}

// New wires an AppContext. mutate, when given, adjusts the config first.
func New(t *testing.T, mutate ...func(*config.Config)) *Env {
	t.Helper()

	cfg := Config(t)
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })

	trail, err := audit.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = trail.Close() })

	mails := &mailtest.Recorder{}
	index := search.NewMemory()

	appCtx, err := app.New(cfg, app.Deps{
		DB:         dbtest.Open(t),
		RedisCache: rc,
		Index:      index,
		Notifier:   mails,
		Audit:      trail,
		Logger:     logger.Discard(),
	})
	require.NoError(t, err)

	return &Env{App: appCtx, Redis: mr, Mails: mails, Index: index}
}

// User creates an account with password "password1" and the given role.
func (e *Env) User(t *testing.T, username string, role db.Role) *db.User {
	t.Helper()
	hash, err := security.HashPassword(Password)
	require.NoError(t, err)

	u := &db.User{Username: username, Email: username + "@example.com", PasswordHash: hash}
	require.NoError(t, e.App.Mutation.CreateUser(context.Background(), u, mutation.Notice{}))
	if role != db.RoleUser {
		require.NoError(t, e.App.Store.Users.Update(context.Background(), u.ID, map[string]any{"role": role}))
		u.Role = role
	}
	return u
}

// Password is the password of every account made by User.
const Password = "password1"

// Post creates a valid post number n owned by owner.
func (e *Env) Post(t *testing.T, owner *db.User, n int) *db.Post {
	t.Helper()
	p := &db.Post{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Title:         fmt.Sprintf("Notes from %s, entry number %03d", owner.Username, n),
		Content:       strings.Repeat(fmt.Sprintf("%s wrote entry %d. ", owner.Username, n), 20),
	}
	require.NoError(t, e.App.Mutation.CreatePost(context.Background(), p))
	return p
}
