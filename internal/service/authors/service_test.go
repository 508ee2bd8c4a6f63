package authors_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/app/apptest"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/service/authors"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

func setupService(t *testing.T) (*authors.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	return authors.NewService(env.App), env
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)

	alice := env.User(t, "alice_writes", db.RoleUser)
	env.User(t, "alfred_reads", db.RoleUser)
	env.User(t, "bobby_tables", db.RoleUser)
	require.NoError(t, env.App.Store.Users.AddLikes(ctx, alice.ID, 3))

	all, err := svc.List(ctx, "", pagination.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice_writes", all[0].Username)

	hits, err := svc.List(ctx, "al", pagination.Page{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "alice_writes", hits[0].Username)
	assert.Equal(t, "alfred_reads", hits[1].Username)

	none, err := svc.List(ctx, "zzz", pagination.Page{})
	require.NoError(t, err)
	assert.Empty(t, none)

	paged, err := svc.List(ctx, "", pagination.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestProfileAndPosts(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	u := env.User(t, "alice_writes", db.RoleUser)
	env.Post(t, u, 1)
	env.Post(t, u, 2)

	got, err := svc.Profile(ctx, "alice_writes")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	posts, err := svc.Posts(ctx, "alice_writes", pagination.Page{})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	_, err = svc.Profile(ctx, "nobody_here")
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))

	_, err = svc.Posts(ctx, "nobody_here", pagination.Page{})
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}
