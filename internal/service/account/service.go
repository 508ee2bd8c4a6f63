package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/pending"
	"github.com/oggyb/nameless/internal/security"
	"github.com/oggyb/nameless/internal/token"
	"github.com/oggyb/nameless/internal/validate"
	"github.com/oggyb/nameless/internal/verification"
)

// Service implements registration, login and self-service account changes.
// Sensitive changes go through the verification workflow; the confirmed
// change is applied by the mutation orchestrator.
type Service struct {
	appCtx *app.AppContext
}

// NewService creates the account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// Tokens is a freshly issued session.
type Tokens struct {
	Access  string
	Refresh string
}

// Register stages a new account and mails the registration code.
//
// Behavior:
//   - Validates username, email and password; passwords must match.
//   - A taken username or email fails Conflict.
//   - Returns the mail token binding the caller to this registration.
//
// Example:
//
//	mailToken, err := svc.Register(ctx, account.RegisterRequest{Username: "valid_user1", ...})
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	req.Username = validate.Normalize(req.Username)
	req.Email = validate.Normalize(req.Email)

	s.appCtx.Logger.Debug("Register called", "username", req.Username)

	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := s.ensureFree(ctx, req.Username, req.Email); err != nil {
		return "", err
	}

	return s.appCtx.Verification.Initiate(ctx, verification.Request{
		Action:      pending.ActionRegistration,
		Key:         req.Username,
		MailSubject: req.Username,
		Payload: map[string]string{
			verification.FieldUsername: req.Username,
			verification.FieldEmail:    req.Email,
			verification.FieldPassword: req.Password,
		},
	})
}

// ConfirmRegistration creates the staged account.
//
// Behavior:
//   - Invalid or expired mail token fails Unauthorized.
//   - Missing record fails NotFound; a wrong code fails Unauthorized.
//   - Username and email are checked again: another account may have taken
//     them since the registration started.
func (s *Service) ConfirmRegistration(ctx context.Context, mailToken string, code int) (*db.User, error) {
	username, err := s.appCtx.Verification.MailSubject(mailToken)
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Debug("ConfirmRegistration called", "username", username)

	rec, err := s.appCtx.Verification.Confirm(ctx, pending.ActionRegistration, username, code)
	if err != nil {
		return nil, err
	}

	email := rec.Payload[verification.FieldEmail]
	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(rec.Payload[verification.FieldPassword])
	if err != nil {
		return nil, svcErr.Internal("hash password", err)
	}

	u := &db.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.appCtx.Mutation.CreateUser(ctx, u, mutation.Notice{To: email, Body: mail.InfoRegistered}); err != nil {
		return nil, err
	}
	s.appCtx.Verification.Done(ctx, pending.ActionRegistration, username)

	s.appCtx.Logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// ResendRegistration mails a new registration code.
func (s *Service) ResendRegistration(ctx context.Context, mailToken string) (string, error) {
	username, err := s.appCtx.Verification.MailSubject(mailToken)
	if err != nil {
		return "", err
	}
	return s.appCtx.Verification.Resend(ctx, verification.Request{
		Action:      pending.ActionRegistration,
		Key:         username,
		MailSubject: username,
	})
}

// Login checks the credentials and issues an access/refresh pair.
// An unknown login and a wrong password fail the same way.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*db.User, Tokens, error) {
	req.Login = validate.Normalize(req.Login)

	s.appCtx.Logger.Debug("Login called", "login", req.Login)

	if err := req.Validate(); err != nil {
		return nil, Tokens{}, err
	}

	u, err := s.appCtx.Store.Users.GetByLogin(ctx, req.Login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, svcErr.Unauthorized("wrong username, email or password")
	}
	if err != nil {
		return nil, Tokens{}, svcErr.Map(err)
	}
	if !security.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, Tokens{}, svcErr.Unauthorized("wrong username, email or password")
	}

	tokens, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, tokens, nil
}

func (s *Service) issueSession(userID string) (Tokens, error) {
	access, err := s.appCtx.Tokens.Issue(token.Access, userID)
	if err != nil {
		return Tokens{}, svcErr.Internal("issue access token", err)
	}
	refresh, err := s.appCtx.Tokens.Issue(token.Refresh, userID)
	if err != nil {
		return Tokens{}, svcErr.Internal("issue refresh token", err)
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// Me returns the caller's current record.
func (s *Service) Me(ctx context.Context, id auth.Identity) (*db.User, error) {
	return s.user(ctx, id.ID)
}

// UpdateAboutMe replaces the caller's description; nil clears it.
func (s *Service) UpdateAboutMe(ctx context.Context, id auth.Identity, req AboutMeRequest) (*db.User, error) {
	s.appCtx.Logger.Debug("UpdateAboutMe called", "user_id", id.ID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.user(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if err := s.appCtx.Mutation.UpdateUser(ctx, u, map[string]any{"about_me": req.Description}, mutation.Notice{}); err != nil {
		return nil, err
	}
	u.AboutMe = req.Description
	return u, nil
}

//
// helpers
//

func (s *Service) user(ctx context.Context, id string) (*db.User, error) {
	u, err := s.appCtx.Store.Users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) ensureFree(ctx context.Context, username, email string) error {
	if username != "" {
		taken, err := s.appCtx.Store.Users.UsernameTaken(ctx, username)
		if err != nil {
			return svcErr.Map(err)
		}
		if taken {
			return svcErr.Conflict("username already taken")
		}
	}
	if email != "" {
		taken, err := s.appCtx.Store.Users.EmailTaken(ctx, email)
		if err != nil {
			return svcErr.Map(err)
		}
		if taken {
			return svcErr.Conflict("email already in use")
		}
	}
	return nil
}
