package notifications

import (
	"context"

	"bookspace/pkg/events"
	"bookspace/pkg/kafka"
	"bookspace/pkg/logger"
)

// Dispatcher turns consumed notification messages into emails.
type Dispatcher struct {
	mailer Mailer
	log    *logger.Logger
}

func NewDispatcher(mailer Mailer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		log:    log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable or unrenderable messages are
// permanent failures and go to the dead letter topic.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	n, err := events.Decode(msg)
	if err != nil {
		d.log.Warn("Dropping undecodable notification", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return err
	}
	if n.Recipient == "" {
		return kafka.NewPermanentError("notification has no recipient", kafka.ErrInvalidMessage)
	}

	email, err := Render(n)
	if err != nil {
		return kafka.NewPermanentError("render notification", err)
	}

	if err := d.mailer.Send(ctx, email); err != nil {
		d.log.Error("Failed to send email",
			"event_type", n.Type,
			"recipient", n.Recipient,
			"retryable", kafka.ClassifyError(err) == kafka.ErrorTypeTransient,
			"error", err,
		)
		return err
	}

	d.log.Info("Notification delivered", "event_type", n.Type, "recipient", n.Recipient)
	return nil
}
