package notifications

import (
	"context"
	"fmt"
	"net/http"

	"bookspace/pkg/kafka"
	"bookspace/pkg/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender is satisfied by *sendgrid.Client.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client   Sender
	fromName string
	from     string
	log      *logger.Logger
}

func NewSendGridMailer(apiKey, fromEmail, fromName string, log *logger.Logger) *SendGridMailer {
	return NewSendGridMailerWithSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName, log)
}

func NewSendGridMailerWithSender(client Sender, fromEmail, fromName string, log *logger.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:   client,
		fromName: fromName,
		from:     fromEmail,
		log:      log,
	}
}

// Send delivers email. Throttling and provider outages come back as
// transient errors so the consumer retries them.
func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		email.Subject,
		mail.NewEmail(email.ToName, email.To),
		email.Text,
		email.HTML,
	)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return kafka.NewTransientError("sendgrid request failed", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		m.log.Info("Email sent", "to", email.To, "subject", email.Subject, "status", response.StatusCode)
		return nil
	}

	statusErr := fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	if response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= http.StatusInternalServerError {
		return kafka.NewTransientError("sendgrid unavailable", statusErr)
	}
	return kafka.NewPermanentError("sendgrid rejected email", statusErr)
}
