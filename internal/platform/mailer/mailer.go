// Package mailer implements the Email Delivery Gateway over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/pvasek/taskhub/internal/notify"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends notification emails through an SMTP relay. It satisfies
// notify.EmailSender; delivery is strictly best-effort and the caller
// bounds every send with a timeout.
type SMTPSender struct {
	client *gomail.Client
	config Config
	logger *slog.Logger
}

// NewSMTPSender creates a new SMTPSender for the given relay.
func NewSMTPSender(config Config, logger *slog.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(config.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.Username),
			gomail.WithPassword(config.Password),
		)
	}

	client, err := gomail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SMTPSender{
		client: client,
		config: config,
		logger: logger.With(slog.String("component", "smtp_sender")),
	}, nil
}

// Send implements notify.EmailSender.
func (s *SMTPSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	m := gomail.NewMsg()

	if err := m.FromFormat(s.config.FromName, s.config.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
