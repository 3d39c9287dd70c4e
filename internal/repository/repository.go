// Package repository defines the persistence contracts for restaurants,
// tables and reservations, together with their MongoDB implementation.
// PostgreSQL and in-memory implementations live in subpackages.
package repository

import (
	"context"
	"errors"

	"tablebook/pkg/model"
)

const (
	RestaurantsCollection      = "Restaurants"
	TablesCollection           = "Tables"
	ReservationsCollection     = "Reservations"
	ReservationLocksCollection = "Reservation_locks"
)

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique key (slug, table number) is already taken
	ErrDuplicate = errors.New("record already exists")

	// ErrStatusChanged is returned by a compare-and-set update whose expected
	// status no longer matches the stored one
	ErrStatusChanged = errors.New("reservation status changed concurrently")
)

type RestaurantRepository interface {
	Create(ctx context.Context, r *model.Restaurant) error
	FindByID(ctx context.Context, id string) (*model.Restaurant, error)
	FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error)
	Update(ctx context.Context, r *model.Restaurant) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type TableRepository interface {
	Create(ctx context.Context, t *model.Table) error
	FindByID(ctx context.Context, id string) (*model.Table, error)
	// FindByRestaurant returns the restaurant's tables ordered by sort_order,
	// then number. activeOnly drops soft-disabled tables.
	FindByRestaurant(ctx context.Context, restaurantID string, activeOnly bool) ([]*model.Table, error)
	Update(ctx context.Context, t *model.Table) error
}

type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindActiveByTableAndDate(ctx context.Context, tableID, date string) ([]*model.Reservation, error)
	FindActiveByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error)
	// FindByRestaurantAndDate returns every reservation of the day regardless
	// of status, ordered by start time.
	FindByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error)
	// UpdateStatus sets status to next (and notes when non-nil) only if the
	// stored status still equals expected. It returns ErrStatusChanged when it
	// does not and ErrNotFound when the reservation is gone.
	UpdateStatus(ctx context.Context, id string, expected, next model.ReservationStatus, notes *string) (*model.Reservation, error)

	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ActiveStatusValues returns model.ActiveStatuses as plain strings for
// query filters.
func ActiveStatusValues() []string {
	out := make([]string, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
