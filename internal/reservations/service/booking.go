package service

import (
	"context"
	"errors"
	"time"

	"tablebook/internal/repository"
	"tablebook/internal/reservations/events"
	"tablebook/internal/reservations/lock"
	"tablebook/internal/reservations/validator"
	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"github.com/google/uuid"
)

type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.Reservation, error)
	// BookBySlug resolves the public restaurant slug and books.
	BookBySlug(ctx context.Context, slug string, req *model.BookingRequest) (*model.Reservation, error)
}

type bookingService struct {
	restaurants  repository.RestaurantRepository
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	locker       lock.Locker
	publisher    events.Publisher
	validator    *validator.ReservationValidator
	log          *logger.Logger
	now          func() time.Time
}

func NewBookingService(
	restaurants repository.RestaurantRepository,
	tables repository.TableRepository,
	reservations repository.ReservationRepository,
	locker lock.Locker,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	log *logger.Logger,
	opts ...Option,
) BookingService {
	o := applyOptions(opts)
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		restaurants:  restaurants,
		tables:       tables,
		reservations: reservations,
		locker:       locker,
		publisher:    publisher,
		validator:    validator,
		log:          log,
		now:          o.now,
	}
}

func (s *bookingService) BookBySlug(ctx context.Context, slug string, req *model.BookingRequest) (*model.Reservation, error) {
	restaurant, err := findRestaurantBySlug(ctx, s.restaurants, sanitizer.SanitizeLookupKey(slug))
	if err != nil {
		return nil, err
	}
	req.RestaurantID = restaurant.ID
	return s.Book(ctx, req)
}

func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.Reservation, error) {
	s.sanitize(req)
	if err := s.validator.ValidateBooking(req); err != nil {
		return nil, err
	}

	restaurant, err := findRestaurantByID(ctx, s.restaurants, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.ReservationsEnabled {
		return nil, apperrors.ReservationsDisabled(restaurant.ID)
	}

	table, err := s.verifyTable(ctx, restaurant, req)
	if err != nil {
		return nil, err
	}

	window, err := s.verifyWindow(restaurant, req)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.Key(table.ID, req.Date))
	if err != nil {
		s.log.Warn("Failed to acquire table lock",
			"table_id", table.ID,
			"date", req.Date,
			"error", err,
		)
		return nil, lockError(err)
	}
	defer func() {
		// The request context may already be done; the lock must still go.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("Failed to release table lock", "table_id", table.ID, "date", req.Date, "error", err)
		}
	}()

	reservation := &model.Reservation{
		ID:              uuid.NewString(),
		RestaurantID:    restaurant.ID,
		TableID:         table.ID,
		Date:            req.Date,
		StartTime:       window.Start.String(),
		DurationMinutes: restaurant.ReservationSlotMinutes,
		GuestsCount:     req.GuestsCount,
		Status:          model.StatusPending,
		Notes:           req.Notes,
		GuestName:       req.GuestName,
		GuestPhone:      req.GuestPhone,
	}

	err = s.reservations.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifyNoOverlap(txCtx, table.ID, req.Date, window); err != nil {
			return err
		}
		if err := s.reservations.Create(txCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.log.Info("Reservation conflict",
				"table_id", table.ID,
				"date", req.Date,
				"start_time", reservation.StartTime,
			)
			return nil, err
		}
		s.log.Error("Failed to create reservation", "table_id", table.ID, "date", req.Date, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, contextError(err, "Failed to create reservation")
	}

	s.log.Info("Reservation created",
		"id", reservation.ID,
		"restaurant_id", reservation.RestaurantID,
		"table_id", reservation.TableID,
		"date", reservation.Date,
		"start_time", reservation.StartTime,
		"guests", reservation.GuestsCount,
	)

	if err := s.publisher.Publish(ctx, events.ReservationCreated(reservation)); err != nil {
		s.log.Warn("Failed to publish reservation event", "id", reservation.ID, "error", err)
	}

	return reservation, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.RestaurantID = sanitizer.TrimAndNormalize(req.RestaurantID)
	req.TableID = sanitizer.TrimAndNormalize(req.TableID)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.StartTime = sanitizer.TrimAndNormalize(req.StartTime)
	req.Notes = sanitizer.NormalizeNotes(req.Notes)
	req.GuestName = sanitizer.NormalizeName(req.GuestName)
	if req.GuestPhone != "" {
		req.GuestPhone = sanitizer.NormalizePhone(req.GuestPhone)
	}
}

func (s *bookingService) verifyTable(ctx context.Context, restaurant *model.Restaurant, req *model.BookingRequest) (*model.Table, error) {
	table, err := s.tables.FindByID(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Table", req.TableID)
		}
		return nil, apperrors.Internal("Failed to retrieve table", err)
	}
	if table.RestaurantID != restaurant.ID || !table.IsActive {
		return nil, apperrors.NotFoundWithID("Table", req.TableID)
	}
	if table.Capacity < req.GuestsCount {
		return nil, apperrors.Validation("Table is too small for the party", map[string]any{
			"capacity":     table.Capacity,
			"guests_count": req.GuestsCount,
		})
	}
	return table, nil
}

func (s *bookingService) verifyWindow(restaurant *model.Restaurant, req *model.BookingRequest) (daytime.Interval, error) {
	hours, err := workingHours(restaurant)
	if err != nil {
		return daytime.Interval{}, err
	}

	start := daytime.MustParseTime(req.StartTime)
	window := daytime.NewInterval(start, restaurant.ReservationSlotMinutes)
	if !window.Within(hours) {
		return daytime.Interval{}, apperrors.Validation("Reservation is outside working hours", map[string]any{
			"start_time":          window.Start.String(),
			"end_time":            window.End.String(),
			"working_hours_start": restaurant.WorkingHoursStart,
			"working_hours_end":   restaurant.WorkingHoursEnd,
		})
	}

	clock, err := clockFor(restaurant, s.now())
	if err != nil {
		return daytime.Interval{}, err
	}
	if clock.started(req.Date, start) {
		return daytime.Interval{}, apperrors.Validation("Reservation start is in the past", map[string]any{
			"date":       req.Date,
			"start_time": window.Start.String(),
		})
	}
	return window, nil
}

// verifyNoOverlap re-reads the table's active reservations inside the
// transaction, after the lock is held.
func (s *bookingService) verifyNoOverlap(ctx context.Context, tableID, date string, window daytime.Interval) error {
	existing, err := s.reservations.FindActiveByTableAndDate(ctx, tableID, date)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}
	for _, res := range existing {
		iv, err := occupied(res)
		if err != nil {
			return apperrors.Internal("Stored reservation is corrupt", err)
		}
		if iv.Overlaps(window) {
			return apperrors.Conflict("Table is already reserved for this time").WithDetails(map[string]any{
				"table_id":   tableID,
				"date":       date,
				"start_time": window.Start.String(),
				"busy_from":  iv.Start.String(),
				"busy_until": iv.End.String(),
			})
		}
	}
	return nil
}
