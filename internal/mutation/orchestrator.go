// Package mutation applies confirmed changes to the primary store, then the
// search index, then notifies. The primary store is authoritative: index and
// notification failures are logged and never roll anything back.
package mutation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/repository"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/utils/pagination"
)

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Notify(to, body string)
}

// Notice is an optional message sent after a successful commit.
type Notice struct {
	To   string
	Body string
}

type Orchestrator struct {
	store    *repository.Store
	index    search.Index
	notifier Notifier
	log      *slog.Logger
}

func New(store *repository.Store, index search.Index, notifier Notifier, log *slog.Logger) *Orchestrator {
	return &Orchestrator{store: store, index: index, notifier: notifier, log: log}
}

//
// Users
//

// CreateUser inserts u and indexes its username. Taken names fail Conflict.
func (o *Orchestrator) CreateUser(ctx context.Context, u *db.User, notice Notice) error {
	if err := o.store.Users.Create(ctx, u); err != nil {
		return conflict(err, "username or email already in use")
	}

	o.indexed(ctx, "upsert user", o.index.Upsert(ctx, search.Users, u.ID, userDoc(u.ID, u.Username)))
	o.notify(notice)
	return nil
}

// UpdateUser writes fields on u. Unique violations fail Conflict.
func (o *Orchestrator) UpdateUser(ctx context.Context, u *db.User, fields map[string]any, notice Notice) error {
	if err := o.store.Users.Update(ctx, u.ID, fields); err != nil {
		return conflict(err, "value already in use")
	}
	o.notify(notice)
	return nil
}

// RenameUser changes u's username and the denormalized owner_username of all
// of u's posts in one transaction, then updates the index.
func (o *Orchestrator) RenameUser(ctx context.Context, u *db.User, username string, notice Notice) error {
	err := o.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Update(ctx, u.ID, map[string]any{"username": username}); err != nil {
			return err
		}
		_, err := tx.Posts.RenameOwner(ctx, u.ID, username)
		return err
	})
	if err != nil {
		return conflict(err, "username already in use")
	}

	o.indexed(ctx, "rename user",
		o.index.UpdateByMatch(ctx, search.Users, search.FieldID, u.ID, search.Document{search.FieldUsername: username}))
	o.notify(notice)
	return nil
}

// DeleteUser removes u with everything that depends on it.
//
// Behavior (single transaction):
//  1. Likes u gave: each liked post and its owner lose one like, then the rows go.
//  2. Each post u owns: its likes, then the post row.
//  3. The user row.
//
// After commit the posts and the user leave the index, then notice is sent.
func (o *Orchestrator) DeleteUser(ctx context.Context, u *db.User, notice Notice) error {
	var postIDs []uint64

	err := o.store.Transaction(ctx, func(tx *repository.Store) error {
		given, err := tx.Likes.ByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		for _, l := range given {
			p, err := tx.Posts.GetByID(ctx, l.PostID)
			if err != nil {
				return err
			}
			if p.OwnerID == u.ID {
				continue // the post goes away below
			}
			if err := tx.Posts.AddLikes(ctx, p.ID, -1); err != nil {
				return err
			}
			if err := tx.Users.AddLikes(ctx, p.OwnerID, -1); err != nil {
				return err
			}
		}
		if _, err := tx.Likes.DeleteByUser(ctx, u.ID); err != nil {
			return err
		}

		if postIDs, err = tx.Posts.IDsByOwner(ctx, u.ID); err != nil {
			return err
		}
		for _, id := range postIDs {
			if _, err := tx.Likes.DeleteByPost(ctx, id); err != nil {
				return err
			}
			if err := tx.Posts.Delete(ctx, id); err != nil {
				return err
			}
		}

		return tx.Users.Delete(ctx, u.ID)
	})
	if err != nil {
		return svcErr.Map(err)
	}

	for _, id := range postIDs {
		o.indexed(ctx, "delete post", o.index.DeleteByMatch(ctx, search.Posts, search.FieldID, postKey(id)))
	}
	o.indexed(ctx, "delete user", o.index.DeleteByMatch(ctx, search.Users, search.FieldID, u.ID))
	o.notify(notice)

	o.log.Info("user deleted", "user_id", u.ID, "posts", len(postIDs))
	return nil
}

//
// Posts
//

// CreatePost inserts p and indexes its title. Duplicate title or body fails Conflict.
func (o *Orchestrator) CreatePost(ctx context.Context, p *db.Post) error {
	if err := o.store.Posts.Create(ctx, p); err != nil {
		return conflict(err, "a post with this title or content already exists")
	}
	o.indexed(ctx, "upsert post", o.index.Upsert(ctx, search.Posts, postKey(p.ID), postDoc(p.ID, p.Title)))
	return nil
}

// UpdatePost rewrites p's title and content.
func (o *Orchestrator) UpdatePost(ctx context.Context, p *db.Post, title, content string, notice Notice) error {
	if err := o.store.Posts.Update(ctx, p.ID, title, content); err != nil {
		return conflict(err, "a post with this title or content already exists")
	}
	o.indexed(ctx, "update post",
		o.index.UpdateByMatch(ctx, search.Posts, search.FieldID, postKey(p.ID), search.Document{search.FieldTitle: title}))
	o.notify(notice)
	return nil
}

// DeletePost removes p and its likes; the owner's like counter drops by the
// likes the post carried.
func (o *Orchestrator) DeletePost(ctx context.Context, p *db.Post, notice Notice) error {
	err := o.store.Transaction(ctx, func(tx *repository.Store) error {
		removed, err := tx.Likes.DeleteByPost(ctx, p.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			if err := tx.Users.AddLikes(ctx, p.OwnerID, -removed); err != nil {
				return err
			}
		}
		return tx.Posts.Delete(ctx, p.ID)
	})
	if err != nil {
		return svcErr.Map(err)
	}

	o.indexed(ctx, "delete post", o.index.DeleteByMatch(ctx, search.Posts, search.FieldID, postKey(p.ID)))
	o.notify(notice)
	return nil
}

// ToggleLike likes postID for userID, or removes the like when it exists.
// The post's and its owner's counters move with it. Returns the new state and
// the post's like count.
func (o *Orchestrator) ToggleLike(ctx context.Context, userID string, postID uint64) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := o.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		removed, err := tx.Likes.Delete(ctx, userID, postID)
		if err != nil {
			return err
		}
		delta := int64(-1)
		if !removed {
			if err := tx.Likes.Create(ctx, userID, postID); err != nil {
				return err
			}
			delta = 1
		}

		if err := tx.Posts.AddLikes(ctx, postID, delta); err != nil {
			return err
		}
		if err := tx.Users.AddLikes(ctx, p.OwnerID, delta); err != nil {
			return err
		}
		liked, count = !removed, p.Likes+delta
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, svcErr.NotFound("post not found")
	}
	if err != nil {
		return false, 0, svcErr.Map(err)
	}
	return liked, count, nil
}

//
// Maintenance
//

// Reindex rebuilds every user and post document from the primary store.
// Used after bulk loads that bypass the orchestrator (seeding).
func (o *Orchestrator) Reindex(ctx context.Context) (users, posts int, err error) {
	page := pagination.Page{Size: pagination.MaxSize}
	for page.Number = 0; ; page.Number++ {
		batch, err := o.store.Users.List(ctx, nil, page)
		if err != nil {
			return users, posts, svcErr.Map(err)
		}
		for i := range batch {
			if err := o.index.Upsert(ctx, search.Users, batch[i].ID, userDoc(batch[i].ID, batch[i].Username)); err != nil {
				return users, posts, svcErr.Internal("reindex users", err)
			}
		}
		users += len(batch)
		if len(batch) < page.Size {
			break
		}
	}

	for page.Number = 0; ; page.Number++ {
		batch, err := o.store.Posts.List(ctx, repository.PostFilter{}, page)
		if err != nil {
			return users, posts, svcErr.Map(err)
		}
		for i := range batch {
			p := &batch[i]
			if err := o.index.Upsert(ctx, search.Posts, postKey(p.ID), postDoc(p.ID, p.Title)); err != nil {
				return users, posts, svcErr.Internal("reindex posts", err)
			}
		}
		posts += len(batch)
		if len(batch) < page.Size {
			break
		}
	}

	o.log.InfoContext(ctx, "search index rebuilt", "users", users, "posts", posts)
	return users, posts, nil
}

//
// helpers
//

func (o *Orchestrator) indexed(ctx context.Context, op string, err error) {
	if err != nil {
		o.log.WarnContext(ctx, "secondary index update failed", "op", op, "err", err)
	}
}

func (o *Orchestrator) notify(n Notice) {
	if n.To != "" && n.Body != "" {
		o.notifier.Notify(n.To, n.Body)
	}
}

func conflict(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return svcErr.Conflict(msg)
	}
	return svcErr.Map(err)
}

func postKey(id uint64) string { return strconv.FormatUint(id, 10) }

func userDoc(id, username string) search.Document {
	return search.Document{search.FieldID: id, search.FieldUsername: username}
}

func postDoc(id uint64, title string) search.Document {
	return search.Document{search.FieldID: postKey(id), search.FieldTitle: title}
}
