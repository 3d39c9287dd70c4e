package events

import (
	"context"
	"errors"
	"testing"

	"tablebook/pkg/kafka"
	"tablebook/pkg/middleware"
	"tablebook/pkg/model"
)

type capturingProducer struct {
	msgs []kafka.Message
	err  error
}

func (c *capturingProducer) Publish(_ context.Context, msg kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	producer := &capturingProducer{}
	pub := NewKafkaPublisher(producer, "reservations")

	res := &model.Reservation{ID: "res-1", RestaurantID: "rest-1", TableID: "table-1", Status: model.StatusConfirmed}
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	if err := pub.Publish(ctx, StatusChanged(res, model.StatusPending)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(producer.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(producer.msgs))
	}

	msg := producer.msgs[0]
	if msg.Key != "table-1" {
		t.Errorf("key = %q, want table-1", msg.Key)
	}
	if msg.EventType() != TypeReservationStatusChanged {
		t.Errorf("event type = %q", msg.EventType())
	}
	if msg.CorrelationID() != "req-42" {
		t.Errorf("correlation id = %q, want req-42", msg.CorrelationID())
	}

	var decoded Event
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded.PreviousStatus != model.StatusPending || decoded.Reservation.ID != "res-1" {
		t.Errorf("decoded event = %+v", decoded)
	}
}

func TestKafkaPublisherErrors(t *testing.T) {
	pub := NewKafkaPublisher(&capturingProducer{err: errors.New("down")}, "reservations")

	if err := pub.Publish(context.Background(), Event{Type: TypeReservationCreated}); err == nil {
		t.Error("expected error for event without reservation")
	}
	err := pub.Publish(context.Background(), ReservationCreated(&model.Reservation{ID: "r", TableID: "t"}))
	if err == nil {
		t.Error("expected producer error to surface")
	}
}
