// Package auth authenticates bearer credentials and enforces roles and
// ownership. Roles are always read from the live user record.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/token"
)

// Identity is who the caller is, as of the current request.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     db.Role
}

// Credentials are the raw bearer tokens presented by the caller.
type Credentials struct {
	Access  string
	Refresh string
}

// Session is the outcome of authentication.
//
// ReissuedAccess is non-empty when the access token was minted from the
// refresh token; the transport must hand it back to the caller.
type Session struct {
	Identity       Identity
	User           *db.User
	ReissuedAccess string
}

// UserLoader resolves a token subject to the current user record.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*db.User, error)
}

// Engine runs the authentication and authorization checks.
type Engine struct {
	users  UserLoader
	tokens *token.Service
	log    *slog.Logger
}

func NewEngine(users UserLoader, tokens *token.Service, log *slog.Logger) *Engine {
	return &Engine{users: users, tokens: tokens, log: log}
}

// Authenticate resolves creds to an identity.
//
// Behavior:
//   - A valid access token resolves to the live user; no side effect.
//   - A missing, invalid or expired access token falls back to the refresh
//     token; on success a new access token is minted and reported.
//   - A token whose subject no longer exists fails Unauthorized.
//   - Nothing usable fails Unauthorized.
func (e *Engine) Authenticate(ctx context.Context, creds Credentials) (Session, error) {
	if subject, err := e.tokens.Verify(token.Access, creds.Access); err == nil {
		u, err := e.load(ctx, subject)
		if err != nil {
			return Session{}, err
		}
		return Session{Identity: identityOf(u), User: u}, nil
	} else if creds.Access != "" {
		e.log.Debug("access token rejected, trying refresh", "err", err)
	}

	subject, err := e.tokens.Verify(token.Refresh, creds.Refresh)
	if err != nil {
		return Session{}, svcErr.Unauthorized("not authenticated")
	}

	u, err := e.load(ctx, subject)
	if err != nil {
		return Session{}, err
	}

	access, err := e.tokens.Issue(token.Access, u.ID)
	if err != nil {
		return Session{}, svcErr.Internal("issue access token", err)
	}

	e.log.Debug("access token refreshed", "user_id", u.ID)
	return Session{Identity: identityOf(u), User: u, ReissuedAccess: access}, nil
}

// RequireRole re-reads the user behind id and fails Forbidden unless the
// stored role is at least min.
func (e *Engine) RequireRole(ctx context.Context, id Identity, min db.Role) (Identity, error) {
	u, err := e.load(ctx, id.ID)
	if err != nil {
		return Identity{}, err
	}
	if !u.Role.AtLeast(min) {
		return Identity{}, svcErr.Forbidden("insufficient role")
	}
	return identityOf(u), nil
}

func (e *Engine) load(ctx context.Context, id string) (*db.User, error) {
	u, err := e.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, svcErr.Unauthorized("user no longer exists")
	case err != nil:
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func identityOf(u *db.User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// RequireOwnership fails NotFound when id does not own the resource, so the
// resource's existence is not revealed.
func RequireOwnership(id Identity, ownerID string) error {
	if id.ID == "" || id.ID != ownerID {
		return svcErr.NotFound("post not found")
	}
	return nil
}
