package moderation

import (
	"context"

	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/service/posts"
	"github.com/oggyb/nameless/internal/validate"
)

// RenameUser replaces another user's username.
//
// Behavior:
//   - The new name must be valid and free (Conflict otherwise).
//   - Moderators cannot rename admins (Forbidden).
//   - The user's posts follow the new name; the user is notified.
//
// Example:
//
//	svc.RenameUser(ctx, actor, userID, "clean_name")
func (s *Service) RenameUser(ctx context.Context, actor auth.Identity, userID, username string) (*db.User, error) {
	username = validate.Normalize(username)

	s.appCtx.Logger.Debug("RenameUser called", "actor", actor.ID, "user_id", userID, "username", username)

	if err := validate.Value("new_username", username, validate.Username...); err != nil {
		return nil, err
	}
	u, err := s.manageable(ctx, actor, userID, auth.OpRename)
	if err != nil {
		return nil, err
	}

	old := u.Username
	notice := mutation.Notice{To: u.Email, Body: mail.ModeratorRenamedUser}
	if err := s.appCtx.Mutation.RenameUser(ctx, u, username, notice); err != nil {
		return nil, err
	}
	u.Username = username

	s.appCtx.Audit.Record(ctx, audit.Moderator, "renamed user",
		"actor", actor.ID, "user", u.ID, "from", old, "to", username)
	return u, nil
}

// DeleteUser removes a regular user with everything they own. Moderators
// cannot delete staff (Forbidden).
func (s *Service) DeleteUser(ctx context.Context, actor auth.Identity, userID string) error {
	s.appCtx.Logger.Debug("DeleteUser called", "actor", actor.ID, "user_id", userID)

	u, err := s.manageable(ctx, actor, userID, auth.OpDelete)
	if err != nil {
		return err
	}
	if err := s.appCtx.Mutation.DeleteUser(ctx, u, mutation.Notice{To: u.Email, Body: mail.ModeratorDeletedUser}); err != nil {
		return err
	}

	s.appCtx.Audit.Record(ctx, audit.Moderator, "deleted user",
		"actor", actor.ID, "user", u.ID, "role", u.Role)
	return nil
}

// UpdatePost rewrites anyone's post and tells the owner.
func (s *Service) UpdatePost(ctx context.Context, actor auth.Identity, postID uint64, req posts.PostRequest) (*db.Post, error) {
	s.appCtx.Logger.Debug("UpdatePost called", "actor", actor.ID, "post_id", postID)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := posts.Load(ctx, s.appCtx.Store, postID)
	if err != nil {
		return nil, err
	}

	if err := s.appCtx.Mutation.UpdatePost(ctx, p, req.Title, req.Content, s.ownerNotice(ctx, p, mail.ModeratorEditedPost)); err != nil {
		return nil, err
	}
	p.Title, p.Content = req.Title, req.Content
	p.ContentHash = db.ContentHash(req.Content)

	s.appCtx.Audit.Record(ctx, audit.Moderator, "updated post",
		"actor", actor.ID, "post", p.ID, "owner", p.OwnerID)
	return p, nil
}

// DeletePost removes anyone's post and tells the owner.
func (s *Service) DeletePost(ctx context.Context, actor auth.Identity, postID uint64) error {
	s.appCtx.Logger.Debug("DeletePost called", "actor", actor.ID, "post_id", postID)

	p, err := posts.Load(ctx, s.appCtx.Store, postID)
	if err != nil {
		return err
	}
	if err := s.appCtx.Mutation.DeletePost(ctx, p, s.ownerNotice(ctx, p, mail.ModeratorDeletedPost)); err != nil {
		return err
	}

	s.appCtx.Audit.Record(ctx, audit.Moderator, "deleted post",
		"actor", actor.ID, "post", p.ID, "owner", p.OwnerID)
	return nil
}

func (s *Service) ownerNotice(ctx context.Context, p *db.Post, body string) mutation.Notice {
	owner, err := s.appCtx.Store.Users.GetByID(ctx, p.OwnerID)
	if err != nil {
		s.appCtx.Logger.Warn("post owner lookup failed, skipping notice", "post_id", p.ID, "err", err)
		return mutation.Notice{}
	}
	return mutation.Notice{To: owner.Email, Body: body}
}
