// Package moderation is the staff surface: moderators police users and
// posts, admins manage roles, staff accounts and the search index. Every
// action lands in the audit trail.
package moderation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
)

type Service struct {
	appCtx *app.AppContext
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

func (s *Service) target(ctx context.Context, userID string) (*db.User, error) {
	u, err := s.appCtx.Store.Users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// manageable loads userID and checks that actor may apply op to it.
// Acting on oneself goes through the account endpoints instead.
func (s *Service) manageable(ctx context.Context, actor auth.Identity, userID string, op auth.Op) (*db.User, error) {
	u, err := s.target(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ID == actor.ID {
		return nil, svcErr.Forbidden("use the account endpoints to change your own account")
	}
	if err := auth.CanManage(actor.Role, u.Role, op); err != nil {
		return nil, err
	}
	return u, nil
}
