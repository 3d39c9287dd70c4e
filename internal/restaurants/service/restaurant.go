package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/repository"
	"tablebook/internal/restaurants/validator"
	"tablebook/pkg/auth"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const maxSlugAttempts = 50

type RestaurantService interface {
	Create(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error)
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)
	Update(ctx context.Context, id string, updates *model.RestaurantUpdate) (*model.Restaurant, error)
}

type restaurantService struct {
	repo      repository.RestaurantRepository
	validator *validator.RestaurantValidator
	cfg       *config.Config
}

func NewRestaurantService(repo repository.RestaurantRepository, validator *validator.RestaurantValidator, cfg *config.Config) RestaurantService {
	return &restaurantService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *restaurantService) Create(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	s.applyDefaults(r)
	r.Name = sanitizer.NormalizeName(r.Name)
	r.TimeZone = sanitizer.TrimAndNormalize(r.TimeZone)
	if err := s.validator.Validate(r); err != nil {
		return nil, err
	}

	generated, err := s.uniqueSlug(ctx, r.Name)
	if err != nil {
		return nil, err
	}
	r.ID = uuid.NewString()
	r.Slug = generated

	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("A restaurant with this slug already exists")
		}
		s.cfg.Log.Error("Failed to create restaurant", "name", r.Name, "error", err)
		return nil, apperrors.Internal("Failed to create restaurant", err)
	}

	s.cfg.Log.Info("Restaurant created", "id", r.ID, "slug", r.Slug)
	return r, nil
}

func (s *restaurantService) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if err := auth.Authorize(ctx, id); err != nil {
		return nil, err
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", id)
		}
		return nil, apperrors.Internal("Failed to retrieve restaurant", err)
	}
	return r, nil
}

// Update changes the config. The slug stays as it was so public links keep
// working after a rename; existing reservations keep their own duration.
func (s *restaurantService) Update(ctx context.Context, id string, updates *model.RestaurantUpdate) (*model.Restaurant, error) {
	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.TimeZone = sanitizer.TrimAndNormalize(updates.TimeZone)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, err
	}

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		r.Name = updates.Name
	}
	if updates.WorkingHoursStart != "" {
		r.WorkingHoursStart = updates.WorkingHoursStart
	}
	if updates.WorkingHoursEnd != "" {
		r.WorkingHoursEnd = updates.WorkingHoursEnd
	}
	if updates.ReservationSlotMinutes != nil {
		r.ReservationSlotMinutes = *updates.ReservationSlotMinutes
	}
	if updates.ReservationsEnabled != nil {
		r.ReservationsEnabled = *updates.ReservationsEnabled
	}
	if updates.TimeZone != "" {
		r.TimeZone = updates.TimeZone
	}

	if err := s.validator.Validate(r); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", id)
		}
		s.cfg.Log.Error("Failed to update restaurant", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update restaurant", err)
	}

	s.cfg.Log.Info("Restaurant updated",
		"id", id,
		"reservations_enabled", r.ReservationsEnabled,
		"slot_minutes", r.ReservationSlotMinutes,
	)
	return r, nil
}

func (s *restaurantService) applyDefaults(r *model.Restaurant) {
	if r.WorkingHoursStart == "" {
		r.WorkingHoursStart = s.cfg.DefaultWorkingHoursStart
	}
	if r.WorkingHoursEnd == "" {
		r.WorkingHoursEnd = s.cfg.DefaultWorkingHoursEnd
	}
	if r.ReservationSlotMinutes == 0 {
		r.ReservationSlotMinutes = s.cfg.DefaultSlotMinutes
	}
	if r.TimeZone == "" {
		r.TimeZone = s.cfg.DefaultTimeZone
	}
	r.CreatedAt = time.Time{}
	r.UpdatedAt = time.Time{}
}

// uniqueSlug derives a slug from name, appending -2, -3... until one is free.
func (s *restaurantService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if len(base) < 2 {
		base = "restaurant"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", apperrors.Internal("Failed to check slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperrors.Conflict(fmt.Sprintf("Too many restaurants named %q", name))
}
