package auth

import (
	"context"

	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
)

// Layer is one step of the authorization pipeline.
type Layer func(ctx context.Context, s Session) (Session, error)

// AtLeast is the layer for a minimum role.
func (e *Engine) AtLeast(min db.Role) Layer {
	return func(ctx context.Context, s Session) (Session, error) {
		id, err := e.RequireRole(ctx, s.Identity, min)
		if err != nil {
			return Session{}, err
		}
		s.Identity = id
		return s, nil
	}
}

// Pipeline authenticates creds and then runs layers in order, stopping at the
// first failure. A reissued access token survives every layer.
//
// Example:
//
//	s, err := engine.Pipeline(ctx, creds, engine.AtLeast(db.RoleModerator))
func (e *Engine) Pipeline(ctx context.Context, creds Credentials, layers ...Layer) (Session, error) {
	s, err := e.Authenticate(ctx, creds)
	if err != nil {
		return Session{}, err
	}
	for _, layer := range layers {
		if s, err = layer(ctx, s); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// Op is a staff action against another account.
type Op string

const (
	OpRename Op = "rename"
	OpDelete Op = "delete"
)

// CanManage decides whether actor may apply op to an account holding target.
//
// Admins may do anything. Moderators never touch admins, may rename users
// and moderators, and may delete plain users only.
func CanManage(actor, target db.Role, op Op) error {
	switch actor {
	case db.RoleAdmin:
		return nil
	case db.RoleModerator:
		if target == db.RoleAdmin {
			return svcErr.Forbidden("moderators cannot manage admins")
		}
		if op == OpDelete && target != db.RoleUser {
			return svcErr.Forbidden("moderators can only delete regular users")
		}
		return nil
	default:
		return svcErr.Forbidden("insufficient role")
	}
}
