package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tablebook/internal/repository/memory"
	"tablebook/internal/reservations/events"
	"tablebook/internal/reservations/lock"
	"tablebook/internal/reservations/validator"
	"tablebook/pkg/auth"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"
	"tablebook/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	today    = "2026-03-01"
	tomorrow = "2026-03-02"
)

// fixedNow is 14:00 on today in UTC.
var fixedNow = time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	store        *memory.Store
	locker       lock.Locker
	publisher    *recordingPublisher
	validator    *validator.ReservationValidator
	restaurant   *model.Restaurant
	tables       map[string]*model.Table
	availability AvailabilityService
	booking      BookingService
	status       StatusService
}

// newFixture seeds a restaurant open 10:00-22:00 with 90 minute bookings and
// three tables: T1 seats 2, T2 seats 4, T3 seats 6.
func newFixture(t *testing.T, mutate ...func(r *model.Restaurant)) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()

	require.NoError(t, sanitizer.SetRegions([]string{"IL", "US"}))
	t.Cleanup(func() { _ = sanitizer.SetRegions(nil) })

	store := memory.NewStore()
	restaurant := &model.Restaurant{
		ID:                     uuid.NewString(),
		Slug:                   "la-bella",
		Name:                   "La Bella",
		WorkingHoursStart:      "10:00",
		WorkingHoursEnd:        "22:00",
		ReservationSlotMinutes: 90,
		ReservationsEnabled:    true,
		TimeZone:               "UTC",
	}
	for _, m := range mutate {
		m(restaurant)
	}
	require.NoError(t, store.Restaurants().Create(ctx, restaurant))

	tables := map[string]*model.Table{}
	for i, def := range []struct {
		number   string
		capacity int
		zone     string
	}{
		{"T1", 2, ""},
		{"T2", 4, "hall"},
		{"T3", 6, "terrace"},
	} {
		table := &model.Table{
			ID:           uuid.NewString(),
			RestaurantID: restaurant.ID,
			Number:       def.number,
			Capacity:     def.capacity,
			Zone:         def.zone,
			IsActive:     true,
			SortOrder:    i + 1,
		}
		require.NoError(t, store.Tables().Create(ctx, table))
		tables[def.number] = table
	}

	v := validator.NewReservationValidator(validation.New(log), log)
	locker := lock.NewMemoryLocker()
	publisher := &recordingPublisher{}
	clock := WithClock(func() time.Time { return fixedNow })

	return &fixture{
		store:        store,
		locker:       locker,
		publisher:    publisher,
		validator:    v,
		restaurant:   restaurant,
		tables:       tables,
		availability: NewAvailabilityService(store.Restaurants(), store.Tables(), store.Reservations(), v, log, clock),
		booking:      NewBookingService(store.Restaurants(), store.Tables(), store.Reservations(), locker, publisher, v, log, clock),
		status:       NewStatusService(store.Reservations(), publisher, v, log),
	}
}

func (f *fixture) request(table, date, start string, guests int) *model.BookingRequest {
	return &model.BookingRequest{
		RestaurantID: f.restaurant.ID,
		TableID:      f.tables[table].ID,
		Date:         date,
		StartTime:    start,
		GuestsCount:  guests,
	}
}

func (f *fixture) book(t *testing.T, table, date, start string, guests int) *model.Reservation {
	t.Helper()
	res, err := f.booking.Book(context.Background(), f.request(table, date, start, guests))
	require.NoError(t, err)
	return res
}

func (f *fixture) operatorCtx() context.Context {
	return auth.WithClaims(context.Background(), &auth.Claims{
		Role:         auth.RoleOperator,
		RestaurantID: f.restaurant.ID,
	})
}
