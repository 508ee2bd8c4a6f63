package moderation

import (
	"context"
	"crypto/subtle"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/security"
	"github.com/oggyb/nameless/internal/utils/pagination"
	"github.com/oggyb/nameless/internal/validate"
)

// CreateUserRequest lets an admin create an account with any role.
type CreateUserRequest struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	RepeatPassword string  `json:"repeat_password"`
	Role           db.Role `json:"role"`
}

func (r CreateUserRequest) Validate() error {
	return validate.Check(validation.ValidateStruct(&r,
		validation.Field(&r.Username, validate.Username...),
		validation.Field(&r.Email, validate.Email...),
		validation.Field(&r.Password, validate.Password...),
		validation.Field(&r.RepeatPassword, validation.Required, validation.By(validate.Equals(r.Password))),
		validation.Field(&r.Role, validation.By(validRole)),
	))
}

func validRole(value interface{}) error {
	if r, _ := value.(db.Role); r != "" && !r.Valid() {
		return errors.New("must be user, moderator or admin")
	}
	return nil
}

// ListStaff lists the holders of a staff role.
func (s *Service) ListStaff(ctx context.Context, role db.Role, page pagination.Page) ([]db.User, error) {
	if role != db.RoleModerator && role != db.RoleAdmin {
		return nil, svcErr.Validation("role", "must be moderator or admin")
	}
	users, err := s.appCtx.Store.Users.ListByRole(ctx, role, page)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return users, nil
}

// ReadAudit returns the newest limit entries of a staff audit channel.
func (s *Service) ReadAudit(ch audit.Channel, limit int) ([]string, error) {
	if ch != audit.Moderator && ch != audit.Admin {
		return nil, svcErr.Validation("channel", "must be moderator or admin")
	}
	lines, err := s.appCtx.Audit.Read(ch, limit)
	if err != nil {
		return nil, svcErr.Internal("read audit log", err)
	}
	return lines, nil
}

// CreateUser creates an account directly, skipping email verification.
func (s *Service) CreateUser(ctx context.Context, actor auth.Identity, req CreateUserRequest) (*db.User, error) {
	req.Username = validate.Normalize(req.Username)
	req.Email = validate.Normalize(req.Email)

	s.appCtx.Logger.Debug("CreateUser called", "actor", actor.ID, "username", req.Username, "role", req.Role)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = db.RoleUser
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, svcErr.Internal("hash password", err)
	}

	u := &db.User{Username: req.Username, Email: req.Email, PasswordHash: hash, Role: req.Role}
	if err := s.appCtx.Mutation.CreateUser(ctx, u, mutation.Notice{}); err != nil {
		return nil, err
	}

	s.appCtx.Audit.Record(ctx, audit.Admin, "created user",
		"actor", actor.ID, "user", u.ID, "role", u.Role)
	return u, nil
}

// ChangeRole sets userID's role. Takes effect on the user's next request.
func (s *Service) ChangeRole(ctx context.Context, actor auth.Identity, userID string, role db.Role) (*db.User, error) {
	s.appCtx.Logger.Debug("ChangeRole called", "actor", actor.ID, "user_id", userID, "role", role)

	if !role.Valid() {
		return nil, svcErr.Validation("role", "must be user, moderator or admin")
	}
	u, err := s.target(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ID == actor.ID {
		return nil, svcErr.Forbidden("admins cannot change their own role")
	}

	old := u.Role
	notice := mutation.Notice{To: u.Email, Body: mail.AdminChangedRole + string(role) + "."}
	if err := s.appCtx.Mutation.UpdateUser(ctx, u, map[string]any{"role": role}, notice); err != nil {
		return nil, err
	}
	u.Role = role

	s.appCtx.Audit.Record(ctx, audit.Admin, "changed role",
		"actor", actor.ID, "user", u.ID, "from", old, "to", role)
	return u, nil
}

// DeleteAnyUser removes an account of any role.
func (s *Service) DeleteAnyUser(ctx context.Context, actor auth.Identity, userID string) error {
	s.appCtx.Logger.Debug("DeleteAnyUser called", "actor", actor.ID, "user_id", userID)

	u, err := s.manageable(ctx, actor, userID, auth.OpDelete)
	if err != nil {
		return err
	}
	if err := s.appCtx.Mutation.DeleteUser(ctx, u, mutation.Notice{To: u.Email, Body: mail.AdminDeletedUser}); err != nil {
		return err
	}

	s.appCtx.Audit.Record(ctx, audit.Admin, "deleted user",
		"actor", actor.ID, "user", u.ID, "role", u.Role)
	return nil
}

// CreateIndexes creates the search collections. It is guarded by the master
// key rather than a session so a fresh deployment can bootstrap itself.
func (s *Service) CreateIndexes(ctx context.Context, masterKey string) error {
	want := s.appCtx.Config.Admin.MasterKey
	if want == "" || subtle.ConstantTimeCompare([]byte(masterKey), []byte(want)) != 1 {
		return svcErr.Forbidden("bad key")
	}

	if err := s.appCtx.Index.EnsureCollections(ctx); err != nil {
		return svcErr.Internal("create indexes", err)
	}

	s.appCtx.Audit.Record(ctx, audit.Admin, "created indexes")
	return nil
}
