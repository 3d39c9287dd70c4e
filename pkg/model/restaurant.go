package model

import "time"

type Restaurant struct {
	ID                     string    `json:"id" bson:"_id" validate:"omitempty,uuid"`
	Slug                   string    `json:"slug" bson:"slug" validate:"omitempty,min=2,max=120"`
	Name                   string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	WorkingHoursStart      string    `json:"working_hours_start" bson:"working_hours_start" validate:"required,hhmm"`
	WorkingHoursEnd        string    `json:"working_hours_end" bson:"working_hours_end" validate:"required,hhmm"`
	ReservationSlotMinutes int       `json:"reservation_slot_minutes" bson:"reservation_slot_minutes" validate:"required,min=5,max=720"`
	ReservationsEnabled    bool      `json:"reservations_enabled" bson:"reservations_enabled"`
	TimeZone               string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	CreatedAt              time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

type RestaurantUpdate struct {
	Name                   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	WorkingHoursStart      string `json:"working_hours_start,omitempty" validate:"omitempty,hhmm"`
	WorkingHoursEnd        string `json:"working_hours_end,omitempty" validate:"omitempty,hhmm"`
	ReservationSlotMinutes *int   `json:"reservation_slot_minutes,omitempty" validate:"omitempty,min=5,max=720"`
	ReservationsEnabled    *bool  `json:"reservations_enabled,omitempty"`
	TimeZone               string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}
