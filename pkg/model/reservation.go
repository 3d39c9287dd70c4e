package model

import "time"

type Reservation struct {
	ID              string            `json:"id" bson:"_id"`
	RestaurantID    string            `json:"restaurant_id" bson:"restaurant_id"`
	TableID         string            `json:"table_id" bson:"table_id"`
	Date            string            `json:"date" bson:"date"`
	StartTime       string            `json:"start_time" bson:"start_time"`
	DurationMinutes int               `json:"duration_minutes" bson:"duration_minutes"`
	GuestsCount     int               `json:"guests_count" bson:"guests_count"`
	Status          ReservationStatus `json:"status" bson:"status"`
	Notes           string            `json:"notes,omitempty" bson:"notes,omitempty"`
	GuestName       string            `json:"guest_name,omitempty" bson:"guest_name,omitempty"`
	GuestPhone      string            `json:"guest_phone,omitempty" bson:"guest_phone,omitempty"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is the input of a new reservation. RestaurantID is resolved
// by the caller; on the public API it comes from the restaurant slug.
type BookingRequest struct {
	RestaurantID string `json:"-" validate:"required,uuid"`
	TableID      string `json:"table_id" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,date"`
	StartTime    string `json:"start_time" validate:"required,hhmm"`
	GuestsCount  int    `json:"guests_count" validate:"required,min=1,max=100"`
	Notes        string `json:"notes,omitempty" validate:"omitempty,max=500"`
	GuestName    string `json:"guest_name,omitempty" validate:"omitempty,max=100"`
	GuestPhone   string `json:"guest_phone,omitempty" validate:"omitempty,e164,phone"`
}

// ReservationUpdate carries a target status and/or new notes.
type ReservationUpdate struct {
	Status ReservationStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Notes  *string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}
