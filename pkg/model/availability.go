package model

const (
	ReasonReservationsDisabled = "reservations_disabled"
	ReasonNoSuitableTable      = "no_suitable_table"
	ReasonNoSlots              = "no_slots"
)

type AvailabilityQuery struct {
	Slug   string `validate:"required"`
	Date   string `validate:"required,date"`
	Time   string `validate:"omitempty,hhmm"`
	Guests int    `validate:"required,min=1,max=100"`
}

type SlotAvailability struct {
	Time                string `json:"time"`
	Available           bool   `json:"available"`
	AvailableTableCount int    `json:"available_table_count"`
}

type TableAvailability struct {
	TableID   string `json:"table_id"`
	Number    string `json:"number"`
	Capacity  int    `json:"capacity"`
	Zone      string `json:"zone,omitempty"`
	Available bool   `json:"available"`
}

// Availability is an advisory snapshot: it may be stale by the time a
// booking is attempted.
type Availability struct {
	RestaurantID        string              `json:"restaurant_id"`
	Date                string              `json:"date"`
	Time                string              `json:"time,omitempty"`
	Guests              int                 `json:"guests"`
	ReservationsEnabled bool                `json:"reservations_enabled"`
	SlotDurationMinutes int                 `json:"slot_duration_minutes"`
	Slots               []SlotAvailability  `json:"slots,omitempty"`
	Tables              []TableAvailability `json:"tables,omitempty"`
	Reason              string              `json:"reason,omitempty"`
}
