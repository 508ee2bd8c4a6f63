package account

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/nameless/internal/auth"
	"github.com/oggyb/nameless/internal/db"
	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/mutation"
	"github.com/oggyb/nameless/internal/pending"
	"github.com/oggyb/nameless/internal/security"
	"github.com/oggyb/nameless/internal/validate"
	"github.com/oggyb/nameless/internal/verification"
)

//
// Delete account
//

// InitiateDelete mails the caller a code that confirms account deletion.
func (s *Service) InitiateDelete(ctx context.Context, id auth.Identity) (string, error) {
	s.appCtx.Logger.Debug("InitiateDelete called", "user_id", id.ID)

	u, err := s.user(ctx, id.ID)
	if err != nil {
		return "", err
	}
	return s.initiate(ctx, pending.ActionDeleteAccount, u, nil)
}

// ConfirmDelete removes the account with its posts and likes.
func (s *Service) ConfirmDelete(ctx context.Context, mailToken string, code int) error {
	u, _, err := s.confirm(ctx, pending.ActionDeleteAccount, mailToken, code)
	if err != nil {
		return err
	}
	if err := s.appCtx.Mutation.DeleteUser(ctx, u, mutation.Notice{To: u.Email, Body: mail.InfoAccountDeleted}); err != nil {
		return err
	}
	s.appCtx.Verification.Done(ctx, pending.ActionDeleteAccount, u.ID)
	return nil
}

func (s *Service) ResendDelete(ctx context.Context, mailToken string) (string, error) {
	return s.resend(ctx, pending.ActionDeleteAccount, mailToken)
}

//
// Change username (immediate)
//

// ChangeUsername renames the caller once their password checks out. Posts
// follow the new name in the same transaction.
func (s *Service) ChangeUsername(ctx context.Context, id auth.Identity, req ChangeUsernameRequest) (*db.User, error) {
	req.NewUsername = validate.Normalize(req.NewUsername)

	s.appCtx.Logger.Debug("ChangeUsername called", "user_id", id.ID, "new_username", req.NewUsername)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.user(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, req.NewUsername, ""); err != nil {
		return nil, err
	}
	if !security.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, svcErr.Unauthorized("wrong password")
	}

	if err := s.appCtx.Mutation.RenameUser(ctx, u, req.NewUsername, mutation.Notice{To: u.Email, Body: mail.InfoUsernameChanged}); err != nil {
		return nil, err
	}
	u.Username = req.NewUsername
	return u, nil
}

//
// Change email
//

// InitiateEmailChange stages new_email and mails the code to the new address.
//
// Behavior:
//   - new_email must be valid, unused and equal to repeat_new_email.
//   - The current password must verify (Unauthorized otherwise).
func (s *Service) InitiateEmailChange(ctx context.Context, id auth.Identity, req ChangeEmailRequest) (string, error) {
	req.NewEmail = validate.Normalize(req.NewEmail)
	req.RepeatNewEmail = validate.Normalize(req.RepeatNewEmail)

	s.appCtx.Logger.Debug("InitiateEmailChange called", "user_id", id.ID)

	if err := req.Validate(); err != nil {
		return "", err
	}

	u, err := s.user(ctx, id.ID)
	if err != nil {
		return "", err
	}
	if err := s.ensureFree(ctx, "", req.NewEmail); err != nil {
		return "", err
	}
	if !security.VerifyPassword(req.Password, u.PasswordHash) {
		return "", svcErr.Unauthorized("wrong password")
	}

	return s.initiate(ctx, pending.ActionChangeEmail, u, map[string]string{
		verification.FieldNewEmail: req.NewEmail,
	})
}

// ConfirmEmailChange applies the staged address. An address taken in the
// meantime fails Conflict.
func (s *Service) ConfirmEmailChange(ctx context.Context, mailToken string, code int) (*db.User, error) {
	u, rec, err := s.confirm(ctx, pending.ActionChangeEmail, mailToken, code)
	if err != nil {
		return nil, err
	}

	email := rec.Payload[verification.FieldNewEmail]
	notice := mutation.Notice{To: email, Body: mail.InfoEmailChanged}
	if err := s.appCtx.Mutation.UpdateUser(ctx, u, map[string]any{"email": email}, notice); err != nil {
		return nil, err
	}
	s.appCtx.Verification.Done(ctx, pending.ActionChangeEmail, u.ID)

	u.Email = email
	return u, nil
}

func (s *Service) ResendEmailChange(ctx context.Context, mailToken string) (string, error) {
	return s.resend(ctx, pending.ActionChangeEmail, mailToken)
}

//
// Change password
//

// InitiatePasswordChange stages new_password and mails the code to the
// caller's current address.
func (s *Service) InitiatePasswordChange(ctx context.Context, id auth.Identity, req ChangePasswordRequest) (string, error) {
	s.appCtx.Logger.Debug("InitiatePasswordChange called", "user_id", id.ID)

	if err := req.Validate(); err != nil {
		return "", err
	}

	u, err := s.user(ctx, id.ID)
	if err != nil {
		return "", err
	}
	return s.initiate(ctx, pending.ActionChangePassword, u, map[string]string{
		verification.FieldNewPassword: req.Password,
	})
}

// ConfirmPasswordChange stores the hash of the staged password.
func (s *Service) ConfirmPasswordChange(ctx context.Context, mailToken string, code int) error {
	u, rec, err := s.confirm(ctx, pending.ActionChangePassword, mailToken, code)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(rec.Payload[verification.FieldNewPassword])
	if err != nil {
		return svcErr.Internal("hash password", err)
	}
	notice := mutation.Notice{To: u.Email, Body: mail.InfoPasswordChanged}
	if err := s.appCtx.Mutation.UpdateUser(ctx, u, map[string]any{"password_hash": hash}, notice); err != nil {
		return err
	}
	s.appCtx.Verification.Done(ctx, pending.ActionChangePassword, u.ID)
	return nil
}

func (s *Service) ResendPasswordChange(ctx context.Context, mailToken string) (string, error) {
	return s.resend(ctx, pending.ActionChangePassword, mailToken)
}

//
// workflow plumbing: records are keyed by user id, mail tokens carry the username
//

func (s *Service) initiate(ctx context.Context, action pending.Action, u *db.User, payload map[string]string) (string, error) {
	return s.appCtx.Verification.Initiate(ctx, verification.Request{
		Action:      action,
		Key:         u.ID,
		MailSubject: u.Username,
		Recipient:   u.Email,
		Payload:     payload,
	})
}

func (s *Service) confirm(ctx context.Context, action pending.Action, mailToken string, code int) (*db.User, pending.Record, error) {
	u, err := s.mailUser(ctx, mailToken)
	if err != nil {
		return nil, pending.Record{}, err
	}

	s.appCtx.Logger.Debug("confirm called", "action", action, "user_id", u.ID)

	rec, err := s.appCtx.Verification.Confirm(ctx, action, u.ID, code)
	if err != nil {
		return nil, pending.Record{}, err
	}
	return u, rec, nil
}

func (s *Service) resend(ctx context.Context, action pending.Action, mailToken string) (string, error) {
	u, err := s.mailUser(ctx, mailToken)
	if err != nil {
		return "", err
	}
	return s.appCtx.Verification.Resend(ctx, verification.Request{
		Action:      action,
		Key:         u.ID,
		MailSubject: u.Username,
		Recipient:   u.Email,
	})
}

func (s *Service) mailUser(ctx context.Context, mailToken string) (*db.User, error) {
	username, err := s.appCtx.Verification.MailSubject(mailToken)
	if err != nil {
		return nil, err
	}
	u, err := s.appCtx.Store.Users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}
