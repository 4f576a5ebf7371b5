package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/config"
)

// Mailer delivers HTML e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New selects a mailer by cfg.Driver.
func New(cfg config.MailConfig, log *zap.SugaredLogger) (Mailer, error) {
	switch cfg.Driver {
	case "smtp":
		if cfg.SMTPHost == "" || cfg.FromEmail == "" {
			return nil, fmt.Errorf("smtp mailer requires SMTP_HOST and MAIL_FROM")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName, log), nil
	case "brevo":
		client := NewBrevoMailer(cfg.BrevoAPIKey, cfg.FromEmail, cfg.FromName)
		if !client.IsConfigured() {
			return nil, fmt.Errorf("brevo mailer requires BREVO_API_KEY, MAIL_FROM and MAIL_FROM_NAME")
		}
		return client, nil
	case "", "log":
		return NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

// LogMailer writes messages to the log instead of sending them. Used in
// development.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLogMailer(log *zap.SugaredLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.log.Infow("mail (log driver)", "to", to, "subject", subject, "body", htmlBody)
	return nil
}
