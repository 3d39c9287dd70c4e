package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tablebook/internal/repository"
	"tablebook/internal/reservations/events"
	"tablebook/internal/reservations/validator"
	"tablebook/pkg/auth"
	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"
)

// StatusService is the operator side of a reservation: reading it, moving it
// through its lifecycle and editing its notes.
type StatusService interface {
	Get(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, id string, update *model.ReservationUpdate) (*model.Reservation, error)
	ListForDay(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error)
}

type statusService struct {
	reservations repository.ReservationRepository
	publisher    events.Publisher
	validator    *validator.ReservationValidator
	log          *logger.Logger
}

func NewStatusService(
	reservations repository.ReservationRepository,
	publisher events.Publisher,
	validator *validator.ReservationValidator,
	log *logger.Logger,
) StatusService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &statusService{
		reservations: reservations,
		publisher:    publisher,
		validator:    validator,
		log:          log,
	}
}

func (s *statusService) Get(ctx context.Context, id string) (*model.Reservation, error) {
	if _, ok := auth.ClaimsFromContext(ctx); !ok {
		return nil, apperrors.Unauthorized("Missing operator token")
	}

	res, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(ctx, res.RestaurantID); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *statusService) Update(ctx context.Context, id string, update *model.ReservationUpdate) (*model.Reservation, error) {
	if _, ok := auth.ClaimsFromContext(ctx); !ok {
		return nil, apperrors.Unauthorized("Missing operator token")
	}
	if update.Notes != nil {
		notes := sanitizer.NormalizeNotes(*update.Notes)
		update.Notes = &notes
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Status
	if update.Status != "" {
		if !model.CanTransition(current.Status, update.Status) {
			s.log.Warn("Rejected reservation transition",
				"id", id,
				"from", current.Status,
				"to", update.Status,
			)
			return nil, apperrors.InvalidTransition(string(current.Status), string(update.Status))
		}
		next = update.Status
	} else if current.Status.IsTerminal() {
		return nil, apperrors.New(
			apperrors.CodeInvalidTransition,
			fmt.Sprintf("Cannot edit notes of a %s reservation", current.Status),
			http.StatusConflict,
		)
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, current.Status, next, update.Notes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, apperrors.Conflict("Reservation was modified concurrently, reload and retry")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		s.log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, contextError(err, "Failed to update reservation")
	}

	s.log.Info("Reservation updated",
		"id", id,
		"restaurant_id", updated.RestaurantID,
		"from", current.Status,
		"to", updated.Status,
		"notes_changed", update.Notes != nil,
	)

	if updated.Status != current.Status {
		if err := s.publisher.Publish(ctx, events.StatusChanged(updated, current.Status)); err != nil {
			s.log.Warn("Failed to publish reservation event", "id", id, "error", err)
		}
	}

	return updated, nil
}

func (s *statusService) ListForDay(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	if err := auth.Authorize(ctx, restaurantID); err != nil {
		return nil, err
	}
	day, err := daytime.ParseDate(date)
	if err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"date": date})
	}

	list, err := s.reservations.FindByRestaurantAndDate(ctx, restaurantID, day)
	if err != nil {
		return nil, contextError(err, "Failed to list reservations")
	}
	return list, nil
}

func (s *statusService) find(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, contextError(err, "Failed to retrieve reservation")
	}
	return res, nil
}
