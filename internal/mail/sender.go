package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/oggyb/nameless/internal/config"
)

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	client   *gomail.Client
	from     string
	fromName string
}

// NewSMTPSender builds a sender from cfg.Mail. Authentication is only
// configured when a username is set.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Mail.Port)}
	if cfg.Mail.StartTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if cfg.Mail.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Mail.Username),
			gomail.WithPassword(cfg.Mail.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Mail.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.Mail.From, fromName: cfg.Mail.FromName}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when
// SMTP is disabled.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, to, subject, body string) error {
	s.Logger.Info("mail not sent (smtp disabled)", "to", to, "subject", subject, "body", body)
	return nil
}

// NewSender picks SMTP when enabled, otherwise the log sender.
func NewSender(cfg *config.Config, log *slog.Logger) (Sender, error) {
	if !cfg.Mail.Enabled {
		return LogSender{Logger: log}, nil
	}
	return NewSMTPSender(cfg)
}
