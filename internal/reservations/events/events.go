// Package events announces reservation lifecycle changes to other services.
// Publishing is best effort: the reservation is already committed when an
// event is sent.
package events

import (
	"context"
	"time"

	"tablebook/pkg/model"
)

const (
	TypeReservationCreated       = "reservation.created"
	TypeReservationStatusChanged = "reservation.status_changed"

	SchemaVersion = "1"
)

type Event struct {
	Type           string                  `json:"type"`
	Reservation    *model.Reservation      `json:"reservation"`
	PreviousStatus model.ReservationStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

func ReservationCreated(res *model.Reservation) Event {
	return Event{
		Type:        TypeReservationCreated,
		Reservation: res,
		OccurredAt:  time.Now().UTC(),
	}
}

func StatusChanged(res *model.Reservation, previous model.ReservationStatus) Event {
	return Event{
		Type:           TypeReservationStatusChanged,
		Reservation:    res,
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
