package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/db/dbtest"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/token"
)

//
// Test helpers
//

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	store  *repository.Store
	tokens *token.Service
	engine *auth.Engine
	clock  *clock
}

func setup(t *testing.T) *fixture {
	t.Helper()
	c := &clock{t: time.Now()}
	tokens, err := token.NewService("secret", "HS256", time.Minute, 15*time.Minute, 24*time.Hour, token.WithClock(c.now))
	require.NoError(t, err)

	store := repository.NewStore(dbtest.Open(t))
	return &fixture{
		store:  store,
		tokens: tokens,
		engine: auth.NewEngine(store.Users, tokens, logger.Discard()),
		clock:  c,
	}
}

func (f *fixture) user(t *testing.T, name string, role db.Role) *db.User {
	t.Helper()
	u := &db.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) issue(t *testing.T, class token.Class, subject string) string {
	t.Helper()
	raw, err := f.tokens.Issue(class, subject)
	require.NoError(t, err)
	return raw
}

//
// Authenticate
//

func TestAuthenticate_ValidAccess(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice", db.RoleUser)

	s, err := f.engine.Authenticate(context.Background(), auth.Credentials{Access: f.issue(t, token.Access, u.ID)})
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.Identity.ID)
	assert.Equal(t, "alice", s.Identity.Username)
	assert.Empty(t, s.ReissuedAccess)
}

func TestAuthenticate_ExpiredAccessFallsBackToRefresh(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice", db.RoleUser)
	creds := auth.Credentials{
		Access:  f.issue(t, token.Access, u.ID),
		Refresh: f.issue(t, token.Refresh, u.ID),
	}

	f.clock.t = f.clock.t.Add(time.Hour)

	s, err := f.engine.Authenticate(context.Background(), creds)
	require.NoError(t, err)
	require.NotEmpty(t, s.ReissuedAccess)

	sub, err := f.tokens.Verify(token.Access, s.ReissuedAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)
}

func TestAuthenticate_RefreshOnly(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice", db.RoleUser)

	s, err := f.engine.Authenticate(context.Background(), auth.Credentials{Refresh: f.issue(t, token.Refresh, u.ID)})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ReissuedAccess)
}

func TestAuthenticate_Failures(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice", db.RoleUser)
	ctx := context.Background()

	_, err := f.engine.Authenticate(ctx, auth.Credentials{})
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized), "no credentials")

	_, err = f.engine.Authenticate(ctx, auth.Credentials{Access: "garbage", Refresh: "garbage"})
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized), "garbage")

	// a refresh token is not an access token and vice versa
	_, err = f.engine.Authenticate(ctx, auth.Credentials{Access: f.issue(t, token.Refresh, u.ID)})
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized), "refresh as access")

	// a mail token never authenticates
	_, err = f.engine.Authenticate(ctx, auth.Credentials{Refresh: f.issue(t, token.Mail, u.ID)})
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized), "mail as refresh")

	// both expired
	creds := auth.Credentials{Access: f.issue(t, token.Access, u.ID), Refresh: f.issue(t, token.Refresh, u.ID)}
	f.clock.t = f.clock.t.Add(48 * time.Hour)
	_, err = f.engine.Authenticate(ctx, creds)
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized), "both expired")
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice", db.RoleUser)
	access := f.issue(t, token.Access, u.ID)
	require.NoError(t, f.store.Users.Delete(context.Background(), u.ID))

	_, err := f.engine.Authenticate(context.Background(), auth.Credentials{Access: access})
	assert.True(t, svcErr.Is(err, svcErr.KindUnauthorized))
}

//
// Roles
//

func TestPipeline_RoleGates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	plain := f.user(t, "plain", db.RoleUser)
	mod := f.user(t, "moder", db.RoleModerator)
	admin := f.user(t, "admin", db.RoleAdmin)

	creds := func(u *db.User) auth.Credentials {
		return auth.Credentials{Access: f.issue(t, token.Access, u.ID)}
	}
	modGate := f.engine.AtLeast(db.RoleModerator)
	adminGate := f.engine.AtLeast(db.RoleAdmin)

	_, err := f.engine.Pipeline(ctx, creds(plain), modGate)
	assert.True(t, svcErr.Is(err, svcErr.KindForbidden))

	_, err = f.engine.Pipeline(ctx, creds(mod), modGate)
	assert.NoError(t, err)
	_, err = f.engine.Pipeline(ctx, creds(mod), modGate, adminGate)
	assert.True(t, svcErr.Is(err, svcErr.KindForbidden))

	s, err := f.engine.Pipeline(ctx, creds(admin), modGate, adminGate)
	require.NoError(t, err)
	assert.Equal(t, db.RoleAdmin, s.Identity.Role)
}

func TestPipeline_RoleDowngradeTakesEffectImmediately(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := f.user(t, "admin", db.RoleAdmin)
	creds := auth.Credentials{Access: f.issue(t, token.Access, admin.ID)}

	_, err := f.engine.Pipeline(ctx, creds, f.engine.AtLeast(db.RoleAdmin))
	require.NoError(t, err)

	require.NoError(t, f.store.Users.Update(ctx, admin.ID, map[string]any{"role": db.RoleUser}))

	s, err := f.engine.Pipeline(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, db.RoleUser, s.Identity.Role)

	_, err = f.engine.Pipeline(ctx, creds, f.engine.AtLeast(db.RoleModerator))
	assert.True(t, svcErr.Is(err, svcErr.KindForbidden))
}

func TestPipeline_KeepsReissuedAccess(t *testing.T) {
	f := setup(t)
	mod := f.user(t, "moder", db.RoleModerator)

	s, err := f.engine.Pipeline(context.Background(),
		auth.Credentials{Refresh: f.issue(t, token.Refresh, mod.ID)},
		f.engine.AtLeast(db.RoleModerator))
	require.NoError(t, err)
	assert.NotEmpty(t, s.ReissuedAccess)
}

//
// Ownership + staff rules
//

func TestRequireOwnership(t *testing.T) {
	id := auth.Identity{ID: "a"}
	assert.NoError(t, auth.RequireOwnership(id, "a"))

	err := auth.RequireOwnership(id, "b")
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))

	err = auth.RequireOwnership(auth.Identity{}, "")
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

func TestCanManage(t *testing.T) {
	tests := []struct {
		actor, target db.Role
		op            auth.Op
		allowed       bool
	}{
		{db.RoleAdmin, db.RoleAdmin, auth.OpDelete, true},
		{db.RoleAdmin, db.RoleModerator, auth.OpRename, true},
		{db.RoleModerator, db.RoleUser, auth.OpDelete, true},
		{db.RoleModerator, db.RoleUser, auth.OpRename, true},
		{db.RoleModerator, db.RoleModerator, auth.OpRename, true},
		{db.RoleModerator, db.RoleModerator, auth.OpDelete, false},
		{db.RoleModerator, db.RoleAdmin, auth.OpRename, false},
		{db.RoleModerator, db.RoleAdmin, auth.OpDelete, false},
		{db.RoleUser, db.RoleUser, auth.OpRename, false},
	}
	for _, tt := range tests {
		err := auth.CanManage(tt.actor, tt.target, tt.op)
		if tt.allowed {
			assert.NoError(t, err, "%s %s %s", tt.actor, tt.op, tt.target)
		} else {
			assert.True(t, svcErr.Is(err, svcErr.KindForbidden), "%s %s %s", tt.actor, tt.op, tt.target)
		}
	}
}
