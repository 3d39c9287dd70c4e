package model

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// ActiveStatuses occupy a table for conflict purposes.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// transitions lists every legal (from, to) pair. Anything absent is rejected.
var transitions = map[ReservationStatus]map[ReservationStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
	StatusCancelled: {},
	StatusCompleted: {},
}

func (s ReservationStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func CanTransition(from, to ReservationStatus) bool {
	return transitions[from][to]
}

func (s ReservationStatus) String() string {
	return string(s)
}
