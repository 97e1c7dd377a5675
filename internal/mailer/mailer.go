package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/campus-helpdesk/internal/config"
)

// Mailer delivers a plain-text message to one address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPMailer builds an SMTP-backed mailer.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("send %q: empty recipient", subject)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// LogMailer only logs outgoing mail. Used when no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail delivery skipped; smtp not configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))
	return nil
}

// New picks the SMTP mailer when a host is configured and the logging mailer otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg)
}
