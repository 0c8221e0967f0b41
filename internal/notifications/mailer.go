package notifications

import (
	"context"

	"bookspace/pkg/logger"
)

type Email struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// LogMailer writes emails to the log instead of delivering them. It is used
// when no SendGrid key is configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.log.Info("Email not delivered, no mail provider configured",
		"to", email.To,
		"subject", email.Subject,
		"text", email.Text,
	)
	return nil
}
