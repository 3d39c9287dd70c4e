package service

import (
	"context"
	"time"

	"tablebook/internal/repository"
	"tablebook/internal/reservations/slots"
	"tablebook/internal/reservations/validator"
	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

type AvailabilityService interface {
	Query(ctx context.Context, q *model.AvailabilityQuery) (*model.Availability, error)
}

type availabilityService struct {
	restaurants  repository.RestaurantRepository
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	validator    *validator.ReservationValidator
	log          *logger.Logger
	now          func() time.Time
}

func NewAvailabilityService(
	restaurants repository.RestaurantRepository,
	tables repository.TableRepository,
	reservations repository.ReservationRepository,
	validator *validator.ReservationValidator,
	log *logger.Logger,
	opts ...Option,
) AvailabilityService {
	o := applyOptions(opts)
	return &availabilityService{
		restaurants:  restaurants,
		tables:       tables,
		reservations: reservations,
		validator:    validator,
		log:          log,
		now:          o.now,
	}
}

// Query reads the restaurant once and answers from a single snapshot of its
// tables and the day's active reservations. Nothing is locked.
func (s *availabilityService) Query(ctx context.Context, q *model.AvailabilityQuery) (*model.Availability, error) {
	q.Slug = sanitizer.SanitizeLookupKey(q.Slug)
	q.Date = sanitizer.TrimAndNormalize(q.Date)
	q.Time = sanitizer.TrimAndNormalize(q.Time)
	if err := s.validator.ValidateQuery(q); err != nil {
		return nil, err
	}

	restaurant, err := findRestaurantBySlug(ctx, s.restaurants, q.Slug)
	if err != nil {
		return nil, err
	}

	result := &model.Availability{
		RestaurantID:        restaurant.ID,
		Date:                q.Date,
		Time:                q.Time,
		Guests:              q.Guests,
		ReservationsEnabled: restaurant.ReservationsEnabled,
		SlotDurationMinutes: restaurant.ReservationSlotMinutes,
	}
	if !restaurant.ReservationsEnabled {
		result.Reason = model.ReasonReservationsDisabled
		return result, nil
	}

	clock, err := clockFor(restaurant, s.now())
	if err != nil {
		return nil, err
	}
	if q.Date < clock.today {
		return nil, apperrors.Validation("Date is in the past", map[string]any{"date": q.Date, "today": clock.today})
	}

	var requested daytime.TimeOfDay
	if q.Time != "" {
		requested = daytime.MustParseTime(q.Time)
		if clock.started(q.Date, requested) {
			return nil, apperrors.Validation("Time is in the past", map[string]any{"date": q.Date, "time": q.Time})
		}
	}

	hours, err := workingHours(restaurant)
	if err != nil {
		return nil, err
	}

	var (
		tables []*model.Table
		booked []*model.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = s.tables.FindByRestaurant(gctx, restaurant.ID, true)
		return err
	})
	g.Go(func() error {
		var err error
		booked, err = s.reservations.FindActiveByRestaurantAndDate(gctx, restaurant.ID, q.Date)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load availability snapshot",
			"restaurant_id", restaurant.ID,
			"date", q.Date,
			"error", err,
		)
		return nil, contextError(err, "Failed to load availability")
	}

	suitable := make([]*model.Table, 0, len(tables))
	for _, t := range tables {
		if t.Capacity >= q.Guests {
			suitable = append(suitable, t)
		}
	}
	if len(suitable) == 0 {
		result.Reason = model.ReasonNoSuitableTable
		return result, nil
	}

	busy, err := busyByTable(booked)
	if err != nil {
		return nil, apperrors.Internal("Stored reservation is corrupt", err)
	}
	free := func(tableID string, window daytime.Interval) bool {
		if !window.Within(hours) {
			return false
		}
		for _, iv := range busy[tableID] {
			if iv.Overlaps(window) {
				return false
			}
		}
		return true
	}

	if q.Time != "" {
		window := daytime.NewInterval(requested, restaurant.ReservationSlotMinutes)
		result.Tables = make([]model.TableAvailability, 0, len(suitable))
		for _, t := range suitable {
			result.Tables = append(result.Tables, model.TableAvailability{
				TableID:   t.ID,
				Number:    t.Number,
				Capacity:  t.Capacity,
				Zone:      t.Zone,
				Available: free(t.ID, window),
			})
		}
	} else {
		grid, err := slots.ForDay(restaurant.WorkingHoursStart, restaurant.WorkingHoursEnd, q.Date, clock.now)
		if err != nil {
			return nil, err
		}
		result.Slots = []model.SlotAvailability{}
		for start := range grid {
			window := daytime.NewInterval(start, restaurant.ReservationSlotMinutes)
			count := 0
			for _, t := range suitable {
				if free(t.ID, window) {
					count++
				}
			}
			result.Slots = append(result.Slots, model.SlotAvailability{
				Time:                start.String(),
				Available:           count > 0,
				AvailableTableCount: count,
			})
		}
		if len(result.Slots) == 0 {
			result.Reason = model.ReasonNoSlots
		}
	}

	s.log.Debug("Availability computed",
		"restaurant_id", restaurant.ID,
		"date", q.Date,
		"time", q.Time,
		"guests", q.Guests,
		"suitable_tables", len(suitable),
		"active_reservations", len(booked),
	)
	return result, nil
}

func busyByTable(booked []*model.Reservation) (map[string][]daytime.Interval, error) {
	busy := make(map[string][]daytime.Interval, len(booked))
	for _, res := range booked {
		iv, err := occupied(res)
		if err != nil {
			return nil, err
		}
		busy[res.TableID] = append(busy[res.TableID], iv)
	}
	return busy, nil
}
