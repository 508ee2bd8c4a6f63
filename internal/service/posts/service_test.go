package posts_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/app/apptest"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/service/posts"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

//
// Test helpers
//

func setupService(t *testing.T) (*posts.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	return posts.NewService(env.App), env
}

func identity(u *db.User) auth.Identity {
	return auth.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func validPost(title string) posts.PostRequest {
	return posts.PostRequest{
		Title:   title,
		Content: strings.Repeat("Some perfectly ordinary words. ", 10),
	}
}

var firstPage = pagination.Page{Size: pagination.DefaultSize}

//
// Create / read
//

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	u := env.User(t, "author_1", db.RoleUser)

	p, err := svc.Create(ctx, identity(u), validPost("Thirty characters is the minimum length"))
	require.NoError(t, err)
	assert.Equal(t, "author_1", p.OwnerUsername)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)

	_, err = svc.Create(ctx, identity(u), validPost("Thirty characters is the minimum length"))
	assert.True(t, svcErr.Is(err, svcErr.KindConflict))

	_, err = svc.Create(ctx, identity(u), validPost("too short"))
	assert.True(t, svcErr.Is(err, svcErr.KindValidation))

	_, err = svc.Get(ctx, p.ID+1)
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

func TestList_SearchAndOrdering(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	u := env.User(t, "author_1", db.RoleUser)
	fan := env.User(t, "reader_1", db.RoleUser)

	pg, err := svc.Create(ctx, identity(u), validPost("Postgres tuning for people in a hurry"))
	require.NoError(t, err)
	req := validPost("Postgres replication explained step by step")
	req.Content = strings.Repeat("Different words here entirely. ", 10)
	pg2, err := svc.Create(ctx, identity(u), req)
	require.NoError(t, err)
	env.Post(t, u, 1)

	_, _, err = svc.ToggleLike(ctx, identity(fan), pg2.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, "", firstPage)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, pg2.ID, all[0].ID, "most liked first")

	hits, err := svc.List(ctx, "postgres", firstPage)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, []uint64{pg2.ID, pg.ID}, []uint64{hits[0].ID, hits[1].ID})

	none, err := svc.List(ctx, "mongodb", firstPage)
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := svc.Mine(ctx, identity(fan), firstPage)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

//
// Ownership
//

func TestOwnership_OthersGetNotFound(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	a := env.User(t, "author_a", db.RoleUser)
	b := env.User(t, "author_b", db.RoleUser)
	p := env.Post(t, b, 1)

	_, err := svc.Update(ctx, identity(a), p.ID, validPost("An attempt to hijack somebody's post"))
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))

	err = svc.Delete(ctx, identity(a), p.ID)
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Content, got.Content)
}

func TestOwnerCanUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	u := env.User(t, "author_1", db.RoleUser)
	p := env.Post(t, u, 1)

	updated, err := svc.Update(ctx, identity(u), p.ID, validPost("A rewritten title that is long enough"))
	require.NoError(t, err)
	assert.Equal(t, "A rewritten title that is long enough", updated.Title)

	require.NoError(t, svc.Delete(ctx, identity(u), p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

//
// Likes
//

func TestToggleLike_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	owner := env.User(t, "author_1", db.RoleUser)
	fan := env.User(t, "reader_1", db.RoleUser)
	p := env.Post(t, owner, 1)

	got, liked, err := svc.ToggleLike(ctx, identity(fan), p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, p.Likes+1, got.Likes)

	got, liked, err = svc.ToggleLike(ctx, identity(fan), p.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, p.Likes, got.Likes)

	exists, err := env.App.Store.Likes.Exists(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = svc.ToggleLike(ctx, identity(fan), 9999)
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}
