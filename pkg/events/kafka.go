package events

import (
	"context"
	"fmt"
	"time"

	"bookspace/pkg/kafka"
	"bookspace/pkg/middleware"
)

const schemaVersion = "1"

type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher writes notifications to a Kafka topic keyed by recipient,
// so every recipient's notifications stay ordered.
type KafkaPublisher struct {
	producer Producer
	source   string
}

func NewKafkaPublisher(producer Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n Notification) error {
	if !n.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %q", kafka.ErrInvalidMessage, n.Type)
	}
	if n.Recipient == "" {
		return fmt.Errorf("%w: notification %s has no recipient", kafka.ErrInvalidMessage, n.Type)
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(n.Recipient).
		WithValue(n).
		WithEventType(string(n.Type)).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// Decode extracts a notification from a consumed message.
func Decode(msg kafka.Message) (Notification, error) {
	var n Notification
	if err := msg.DecodeValue(&n); err != nil {
		return Notification{}, kafka.NewPermanentError("decode notification", err)
	}
	if !n.Type.Valid() {
		return Notification{}, kafka.NewPermanentError("decode notification", fmt.Errorf("unknown event type %q", n.Type))
	}
	return n, nil
}
