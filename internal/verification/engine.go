// Package verification drives the initiate / confirm / resend workflow that
// gates sensitive account changes behind an emailed code.
//
// States per (action, subject): NONE -> STAGED -> CONFIRMED, or
// STAGED -> EXPIRED once the record's TTL elapses.
package verification

import (
	"context"
	"errors"
	"log/slog"

	svcErr "github.com/oggyb/nameless/internal/errors"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/pending"
	"github.com/oggyb/nameless/internal/security"
	"github.com/oggyb/nameless/internal/token"
)

// Notifier is the fire-and-forget sink for code messages.
type Notifier interface {
	Notify(to, body string)
}

// Policy is the per-action messaging setup.
type Policy struct {
	Purpose mail.CodePurpose
	// RecipientField, when set, sends the code to that payload field instead
	// of Request.Recipient (change-email mails the new address).
	RecipientField string
}

// DefaultPolicies covers every staged action.
var DefaultPolicies = map[pending.Action]Policy{
	pending.ActionRegistration:   {Purpose: mail.CodeRegistration, RecipientField: FieldEmail},
	pending.ActionDeleteAccount:  {Purpose: mail.CodeDeleteAccount},
	pending.ActionChangeEmail:    {Purpose: mail.CodeChangeEmail, RecipientField: FieldNewEmail},
	pending.ActionChangePassword: {Purpose: mail.CodeChangePassword},
}

// Payload field names.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldNewEmail    = "new_email"
	FieldNewPassword = "new_password"
)

// Request describes one initiate or resend.
type Request struct {
	Action pending.Action
	// Key identifies the pending record: the username for registration,
	// the user id otherwise.
	Key string
	// MailSubject is bound into the mail token (always a username).
	MailSubject string
	Recipient   string
	// Payload is ignored by Resend, which re-stages what is stored.
	Payload map[string]string
}

// Engine is the generic workflow.
type Engine struct {
	store    pending.Store
	tokens   *token.Service
	notifier Notifier
	policies map[pending.Action]Policy
	newCode  func() (int, error)
	consume  bool
	log      *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCodeSource replaces the random code generator.
func WithCodeSource(f func() (int, error)) Option { return func(e *Engine) { e.newCode = f } }

// WithConsumeOnConfirm deletes the record after a successful commit instead
// of leaving it to expire.
func WithConsumeOnConfirm(on bool) Option { return func(e *Engine) { e.consume = on } }

func NewEngine(store pending.Store, tokens *token.Service, notifier Notifier, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		policies: DefaultPolicies,
		newCode:  security.NewCode,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initiate stages req.Payload under a fresh code, mails the code and returns
// the mail token that must accompany confirm and resend.
func (e *Engine) Initiate(ctx context.Context, req Request) (string, error) {
	return e.stage(ctx, req, req.Payload)
}

// Resend replaces the code of an existing record, refreshes its TTL and
// mails the new code. Nothing staged fails NotFound.
func (e *Engine) Resend(ctx context.Context, req Request) (string, error) {
	rec, err := e.load(ctx, req.Action, req.Key)
	if err != nil {
		return "", err
	}
	return e.stage(ctx, req, rec.Payload)
}

// Confirm checks code against the staged record and returns it.
//
// Behavior:
//   - Nothing staged (or expired) fails NotFound.
//   - A wrong code fails Unauthorized and leaves the record in place.
//   - The record is not removed here; see Done.
func (e *Engine) Confirm(ctx context.Context, action pending.Action, key string, code int) (pending.Record, error) {
	rec, err := e.load(ctx, action, key)
	if err != nil {
		return pending.Record{}, err
	}
	if rec.Code != code {
		e.log.Info("confirmation code mismatch", "action", action, "key", key)
		return pending.Record{}, svcErr.Unauthorized("invalid confirmation code")
	}
	return rec, nil
}

// Done runs after the confirmed change is committed. Unless the engine
// consumes records, the record stays readable until its TTL runs out, so a
// replayed confirm re-applies the same change.
func (e *Engine) Done(ctx context.Context, action pending.Action, key string) {
	if !e.consume {
		return
	}
	if err := e.store.Delete(ctx, action, key); err != nil {
		e.log.Warn("failed to clear pending record", "action", action, "key", key, "err", err)
	}
}

// MailSubject verifies a mail token and returns the username bound to it.
func (e *Engine) MailSubject(raw string) (string, error) {
	subject, err := e.tokens.Verify(token.Mail, raw)
	if errors.Is(err, token.ErrExpired) {
		return "", svcErr.Unauthorized("confirmation session expired")
	}
	if err != nil {
		return "", svcErr.Unauthorized("invalid confirmation session")
	}
	return subject, nil
}

func (e *Engine) stage(ctx context.Context, req Request, payload map[string]string) (string, error) {
	policy, ok := e.policies[req.Action]
	if !ok {
		return "", svcErr.Internal("stage", errors.New("unknown action "+string(req.Action)))
	}

	recipient := req.Recipient
	if policy.RecipientField != "" {
		recipient = payload[policy.RecipientField]
	}
	if recipient == "" {
		return "", svcErr.Internal("stage", errors.New("no recipient for "+string(req.Action)))
	}

	code, err := e.newCode()
	if err != nil {
		return "", svcErr.Internal("generate code", err)
	}

	ttl := e.tokens.TTL(token.Mail)
	if err := e.store.Put(ctx, req.Action, req.Key, pending.Record{Code: code, Payload: payload}, ttl); err != nil {
		return "", svcErr.Internal("stage", err)
	}

	mailToken, err := e.tokens.Issue(token.Mail, req.MailSubject)
	if err != nil {
		return "", svcErr.Internal("issue mail token", err)
	}

	e.notifier.Notify(recipient, mail.CodeBody(policy.Purpose, code))
	e.log.Debug("pending action staged", "action", req.Action, "key", req.Key, "ttl", ttl)
	return mailToken, nil
}

func (e *Engine) load(ctx context.Context, action pending.Action, key string) (pending.Record, error) {
	rec, ok, err := e.store.Get(ctx, action, key)
	if err != nil {
		return pending.Record{}, svcErr.Internal("load pending", err)
	}
	if !ok {
		return pending.Record{}, svcErr.NotFound("no pending request (expired or never started)")
	}
	return rec, nil
}
