package events

import (
	"context"

	"bookspace/pkg/logger"
)

// LogPublisher records notifications in the service log. Used when Kafka is disabled.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, n Notification) error {
	attrs := []any{"event_type", n.Type, "recipient", n.Recipient}
	if n.Booking != nil {
		attrs = append(attrs, "booking_id", n.Booking.ID, "booking_status", n.Booking.Status)
	}
	p.log.Info("notification emitted", attrs...)
	return nil
}

// Emit publishes n and logs instead of failing the caller. Notifications are
// best effort once the state change they describe has been committed.
func Emit(ctx context.Context, pub Publisher, log *logger.Logger, n Notification) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, n); err != nil {
		log.Error("failed to publish notification", "event_type", n.Type, "recipient", n.Recipient, "error", err)
	}
}
