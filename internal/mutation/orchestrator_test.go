package mutation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/db/dbtest"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/mail/mailtest"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

//
// Test helpers
//

type fixture struct {
	orch  *mutation.Orchestrator
	store *repository.Store
	index *search.Memory
	mails *mailtest.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithIndex(t, search.NewMemory())
}

func setupWithIndex(t *testing.T, idx search.Index) *fixture {
	t.Helper()
	store := repository.NewStore(dbtest.Open(t))
	mails := &mailtest.Recorder{}
	mem, _ := idx.(*search.Memory)
	return &fixture{
		orch:  mutation.New(store, idx, mails, logger.Discard()),
		store: store,
		index: mem,
		mails: mails,
	}
}

func (f *fixture) user(t *testing.T, name string) *db.User {
	t.Helper()
	u := &db.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.orch.CreateUser(context.Background(), u, mutation.Notice{}))
	return u
}

func (f *fixture) post(t *testing.T, owner *db.User, n int) *db.Post {
	t.Helper()
	p := &db.Post{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Title:         fmt.Sprintf("%s writes post number %03d", owner.Username, n),
		Content:       strings.Repeat(fmt.Sprintf("%s %d ", owner.Username, n), 30),
	}
	require.NoError(t, f.orch.CreatePost(context.Background(), p))
	return p
}

func (f *fixture) reload(t *testing.T, u *db.User) *db.User {
	t.Helper()
	got, err := f.store.Users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

func (f *fixture) postLikes(t *testing.T, p *db.Post) int64 {
	t.Helper()
	got, err := f.store.Posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Likes
}

// brokenIndex fails every call.
type brokenIndex struct{}

var errIndexDown = errors.New("index down")

func (brokenIndex) Upsert(context.Context, string, string, search.Document) error { return errIndexDown }
func (brokenIndex) DeleteByMatch(context.Context, string, string, any) error      { return errIndexDown }
func (brokenIndex) UpdateByMatch(context.Context, string, string, any, search.Document) error {
	return errIndexDown
}
func (brokenIndex) Search(context.Context, string, string, string, int) ([]string, error) {
	return nil, errIndexDown
}
func (brokenIndex) EnsureCollections(context.Context) error { return errIndexDown }

//
// Users
//

func TestCreateUser_IndexesAndNotifies(t *testing.T) {
	f := setup(t)
	u := &db.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, f.orch.CreateUser(context.Background(), u, mutation.Notice{To: u.Email, Body: "welcome"}))

	doc, ok := f.index.Get(search.Users, u.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", doc[search.FieldUsername])

	msg, ok := f.mails.Last("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, "welcome", msg.Body)
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	f := setup(t)
	f.user(t, "alice")

	err := f.orch.CreateUser(context.Background(),
		&db.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}, mutation.Notice{})
	assert.True(t, svcErr.Is(err, svcErr.KindConflict))
	assert.Equal(t, 1, f.index.Len(search.Users))
}

func TestIndexFailureDoesNotFailMutation(t *testing.T) {
	f := setupWithIndex(t, brokenIndex{})
	u := f.user(t, "alice")
	p := f.post(t, u, 1)

	require.NoError(t, f.orch.RenameUser(context.Background(), u, "alice_2", mutation.Notice{}))
	require.NoError(t, f.orch.DeletePost(context.Background(), p, mutation.Notice{}))

	got := f.reload(t, u)
	assert.Equal(t, "alice_2", got.Username)
}

func TestRenameUser_UpdatesPostsAndIndex(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.user(t, "alice")
	f.post(t, u, 1)
	f.post(t, u, 2)

	require.NoError(t, f.orch.RenameUser(ctx, u, "alice_new", mutation.Notice{To: u.Email, Body: "renamed"}))

	posts, err := f.store.Posts.List(ctx, repository.PostFilter{OwnerID: u.ID}, pageAll)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, "alice_new", p.OwnerUsername)
	}

	doc, _ := f.index.Get(search.Users, u.ID)
	assert.Equal(t, "alice_new", doc[search.FieldUsername])
	_, ok := f.mails.Last(u.Email)
	assert.True(t, ok)
}

func TestRenameUser_TakenNameRollsBack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.user(t, "alice")
	f.user(t, "bobby")
	f.post(t, u, 1)

	err := f.orch.RenameUser(ctx, u, "bobby", mutation.Notice{})
	assert.True(t, svcErr.Is(err, svcErr.KindConflict))

	posts, err := f.store.Posts.List(ctx, repository.PostFilter{OwnerID: u.ID}, pageAll)
	require.NoError(t, err)
	assert.Equal(t, "alice", posts[0].OwnerUsername)
}

func TestDeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	victim := f.user(t, "victim")
	other := f.user(t, "other")

	own := f.post(t, victim, 1)
	theirs := f.post(t, other, 1)

	// victim likes other's post, other likes victim's post, victim likes own post
	_, _, err := f.orch.ToggleLike(ctx, victim.ID, theirs.ID)
	require.NoError(t, err)
	_, _, err = f.orch.ToggleLike(ctx, other.ID, own.ID)
	require.NoError(t, err)
	_, _, err = f.orch.ToggleLike(ctx, victim.ID, own.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, f.reload(t, other).Likes)

	require.NoError(t, f.orch.DeleteUser(ctx, victim, mutation.Notice{To: victim.Email, Body: "bye"}))

	_, err = f.store.Users.GetByID(ctx, victim.ID)
	assert.Error(t, err)
	_, err = f.store.Posts.GetByID(ctx, own.ID)
	assert.Error(t, err)

	assert.EqualValues(t, 0, f.postLikes(t, theirs))
	assert.EqualValues(t, 0, f.reload(t, other).Likes)

	left, err := f.store.Likes.ByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "likes on deleted posts go too")

	_, ok := f.index.Get(search.Users, victim.ID)
	assert.False(t, ok)
	_, ok = f.index.Get(search.Posts, fmt.Sprint(own.ID))
	assert.False(t, ok)
	_, ok = f.index.Get(search.Posts, fmt.Sprint(theirs.ID))
	assert.True(t, ok)

	msg, ok := f.mails.Last(victim.Email)
	require.True(t, ok)
	assert.Equal(t, "bye", msg.Body)
}

func TestDeleteUser_Missing(t *testing.T) {
	f := setup(t)
	err := f.orch.DeleteUser(context.Background(), &db.User{ID: "nope"}, mutation.Notice{})
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

//
// Posts
//

func TestCreatePost_DuplicateIsConflict(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice")
	p := f.post(t, u, 1)

	dup := &db.Post{OwnerID: u.ID, OwnerUsername: u.Username, Title: p.Title, Content: "x" + p.Content}
	err := f.orch.CreatePost(context.Background(), dup)
	assert.True(t, svcErr.Is(err, svcErr.KindConflict))

	doc, ok := f.index.Get(search.Posts, fmt.Sprint(p.ID))
	require.True(t, ok)
	assert.Equal(t, p.Title, doc[search.FieldTitle])
}

func TestUpdatePost_ReindexesTitle(t *testing.T) {
	f := setup(t)
	u := f.user(t, "alice")
	p := f.post(t, u, 1)

	title := "An entirely different title for the post"
	require.NoError(t, f.orch.UpdatePost(context.Background(), p, title, strings.Repeat("new body ", 30), mutation.Notice{}))

	doc, _ := f.index.Get(search.Posts, fmt.Sprint(p.ID))
	assert.Equal(t, title, doc[search.FieldTitle])
}

func TestDeletePost_AdjustsOwnerLikes(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	owner := f.user(t, "owner")
	fan := f.user(t, "fan_1")
	keep := f.post(t, owner, 1)
	gone := f.post(t, owner, 2)

	for _, p := range []*db.Post{keep, gone} {
		_, _, err := f.orch.ToggleLike(ctx, fan.ID, p.ID)
		require.NoError(t, err)
	}
	require.EqualValues(t, 2, f.reload(t, owner).Likes)

	require.NoError(t, f.orch.DeletePost(ctx, gone, mutation.Notice{To: owner.Email, Body: "removed"}))

	assert.EqualValues(t, 1, f.reload(t, owner).Likes)
	n, err := f.store.Likes.CountByPost(ctx, gone.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.index.Len(search.Posts))
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	owner := f.user(t, "owner")
	fan := f.user(t, "fan_1")
	p := f.post(t, owner, 1)

	liked, count, err := f.orch.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 1, f.reload(t, owner).Likes)

	liked, count, err = f.orch.ToggleLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, count)
	assert.EqualValues(t, 0, f.postLikes(t, p))
	assert.EqualValues(t, 0, f.reload(t, owner).Likes)

	_, _, err = f.orch.ToggleLike(ctx, fan.ID, p.ID+100)
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

var pageAll = pagination.Page{Size: pagination.MaxSize}

//
// Maintenance
//

func TestReindex_RebuildsFromStore(t *testing.T) {
	ctx := context.Background()
	f := setupWithIndex(t, brokenIndex{})
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.post(t, alice, 1)
	f.post(t, bob, 1)
	f.post(t, bob, 2)

	fresh := search.NewMemory()
	orch := mutation.New(f.store, fresh, f.mails, logger.Discard())

	users, posts, err := orch.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users)
	assert.Equal(t, 3, posts)
	assert.Equal(t, 2, fresh.Len(search.Users))
	assert.Equal(t, 3, fresh.Len(search.Posts))

	ids, err := fresh.Search(ctx, search.Users, search.FieldUsername, "bob", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids)
}

func TestReindex_IndexDown(t *testing.T) {
	f := setupWithIndex(t, brokenIndex{})
	f.user(t, "alice")

	_, _, err := f.orch.Reindex(context.Background())
	assert.True(t, svcErr.Is(err, svcErr.KindInternal))
}
