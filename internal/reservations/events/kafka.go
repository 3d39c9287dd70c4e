package events

import (
	"context"
	"fmt"

	"tablebook/pkg/kafka"
	"tablebook/pkg/middleware"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaPublisher keys messages by table id so every event for one table
// lands on the same partition in commit order.
type KafkaPublisher struct {
	producer MessagePublisher
	source   string
}

func NewKafkaPublisher(producer MessagePublisher, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.Reservation == nil {
		return fmt.Errorf("event %s has no reservation", event.Type)
	}

	msg, err := kafka.NewEventMessage(event.Type, event.Reservation.TableID, event,
		kafka.WithSchemaVersion(SchemaVersion),
		kafka.WithSource(p.source),
		kafka.WithCorrelationID(middleware.RequestIDFromContext(ctx)),
		kafka.WithHeader("reservation-id", event.Reservation.ID),
		kafka.WithHeader("restaurant-id", event.Reservation.RestaurantID),
	)
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
