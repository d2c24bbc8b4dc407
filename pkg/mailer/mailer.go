package mailer

import (
	"context"
	"fmt"

	"catalog-service/pkg/config"

	"gopkg.in/gomail.v2"
)

// Message is a plain text notification
type Message struct {
	To      []string
	Subject string
	Body    string
	ReplyTo string
}

// Sender delivers notifications
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTP sends mail through an SMTP relay
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP sender from configuration
func NewSMTP(cfg config.MailConfig) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send implements Sender
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Noop discards every message, used when SMTP is not configured
type Noop struct{}

// Send implements Sender
func (Noop) Send(context.Context, Message) error { return nil }

// New returns an SMTP sender when mail is configured and a Noop otherwise
func New(cfg config.MailConfig) Sender {
	if !cfg.Enabled() {
		return Noop{}
	}
	return NewSMTP(cfg)
}
