package service

import (
	"context"
	"errors"
	"time"

	"tablebook/internal/repository"
	"tablebook/internal/tables/validator"
	"tablebook/pkg/auth"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"github.com/google/uuid"
)

// TableService manages a restaurant's table registry. Tables are never
// deleted; setting is_active=false hides them from availability and booking
// while keeping past reservations resolvable.
type TableService interface {
	Create(ctx context.Context, restaurantID string, t *model.Table) (*model.Table, error)
	List(ctx context.Context, restaurantID string, includeInactive bool) ([]*model.Table, error)
	Update(ctx context.Context, restaurantID, tableID string, updates *model.TableUpdate) (*model.Table, error)
}

type tableService struct {
	restaurants repository.RestaurantRepository
	tables      repository.TableRepository
	validator   *validator.TableValidator
	log         *logger.Logger
}

func NewTableService(
	restaurants repository.RestaurantRepository,
	tables repository.TableRepository,
	validator *validator.TableValidator,
	log *logger.Logger,
) TableService {
	return &tableService{
		restaurants: restaurants,
		tables:      tables,
		validator:   validator,
		log:         log,
	}
}

// Create registers an active table.
func (s *tableService) Create(ctx context.Context, restaurantID string, t *model.Table) (*model.Table, error) {
	if err := s.authorize(ctx, restaurantID); err != nil {
		return nil, err
	}

	t.ID = uuid.NewString()
	t.RestaurantID = restaurantID
	t.IsActive = true
	t.CreatedAt, t.UpdatedAt = time.Time{}, time.Time{}
	s.sanitize(t)
	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}

	if err := s.tables.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Table number " + t.Number + " already exists in this restaurant")
		}
		s.log.Error("Failed to create table", "restaurant_id", restaurantID, "error", err)
		return nil, apperrors.Internal("Failed to create table", err)
	}

	s.log.Info("Table created", "id", t.ID, "restaurant_id", restaurantID, "number", t.Number, "capacity", t.Capacity)
	return t, nil
}

func (s *tableService) List(ctx context.Context, restaurantID string, includeInactive bool) ([]*model.Table, error) {
	if err := s.authorize(ctx, restaurantID); err != nil {
		return nil, err
	}

	list, err := s.tables.FindByRestaurant(ctx, restaurantID, !includeInactive)
	if err != nil {
		return nil, apperrors.Internal("Failed to list tables", err)
	}
	return list, nil
}

func (s *tableService) Update(ctx context.Context, restaurantID, tableID string, updates *model.TableUpdate) (*model.Table, error) {
	if err := s.authorize(ctx, restaurantID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, err
	}

	t, err := s.tables.FindByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Table", tableID)
		}
		return nil, apperrors.Internal("Failed to retrieve table", err)
	}
	if t.RestaurantID != restaurantID {
		return nil, apperrors.NotFoundWithID("Table", tableID)
	}

	if updates.Number != "" {
		t.Number = updates.Number
	}
	if updates.Capacity != nil {
		t.Capacity = *updates.Capacity
	}
	if updates.Zone != nil {
		t.Zone = *updates.Zone
	}
	if updates.IsActive != nil {
		t.IsActive = *updates.IsActive
	}
	if updates.SortOrder != nil {
		t.SortOrder = *updates.SortOrder
	}
	s.sanitize(t)
	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}

	if err := s.tables.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict("Table number " + t.Number + " already exists in this restaurant")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Table", tableID)
		}
		s.log.Error("Failed to update table", "id", tableID, "error", err)
		return nil, apperrors.Internal("Failed to update table", err)
	}

	s.log.Info("Table updated", "id", tableID, "restaurant_id", restaurantID, "is_active", t.IsActive)
	return t, nil
}

func (s *tableService) authorize(ctx context.Context, restaurantID string) error {
	if err := auth.Authorize(ctx, restaurantID); err != nil {
		return err
	}
	if _, err := s.restaurants.FindByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFoundWithID("Restaurant", restaurantID)
		}
		return apperrors.Internal("Failed to retrieve restaurant", err)
	}
	return nil
}

func (s *tableService) sanitize(t *model.Table) {
	t.Number = sanitizer.NormalizeTableNumber(t.Number)
	t.Zone = sanitizer.SanitizeLabel(t.Zone)
}
