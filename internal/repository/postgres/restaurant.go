package postgres

import (
	"context"
	"fmt"

	"tablebook/internal/repository"
	"tablebook/pkg/config"
	pgtx "tablebook/pkg/db/postgres"
	"tablebook/pkg/model"
)

const restaurantColumns = `id, slug, name, working_hours_start, working_hours_end, reservation_slot_minutes, reservations_enabled, time_zone, created_at, updated_at`

type restaurantRepository struct{ base }

func NewRestaurantRepository(cfg *config.Config) repository.RestaurantRepository {
	return &restaurantRepository{base{
		pool:         cfg.Client.Postgres,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}}
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	restaurant.CreatedAt = now()
	restaurant.UpdatedAt = restaurant.CreatedAt
	_, err := r.conn(ctx).Exec(ctx, `
INSERT INTO restaurants(`+restaurantColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		restaurant.ID, restaurant.Slug, restaurant.Name, restaurant.WorkingHoursStart, restaurant.WorkingHoursEnd,
		restaurant.ReservationSlotMinutes, restaurant.ReservationsEnabled, restaurant.TimeZone,
		restaurant.CreatedAt, restaurant.UpdatedAt,
	)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: restaurant slug %s", repository.ErrDuplicate, restaurant.Slug)
		}
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	return r.findOne(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id=$1`, id)
}

func (r *restaurantRepository) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	return r.findOne(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE slug=$1`, slug)
}

func (r *restaurantRepository) findOne(ctx context.Context, query, key string) (*model.Restaurant, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var rs model.Restaurant
	err := r.conn(ctx).QueryRow(ctx, query, key).Scan(
		&rs.ID, &rs.Slug, &rs.Name, &rs.WorkingHoursStart, &rs.WorkingHoursEnd,
		&rs.ReservationSlotMinutes, &rs.ReservationsEnabled, &rs.TimeZone, &rs.CreatedAt, &rs.UpdatedAt,
	)
	if err != nil {
		return nil, wrapNotFound(err, "restaurant", key)
	}
	return &rs, nil
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	restaurant.UpdatedAt = now()
	tag, err := r.conn(ctx).Exec(ctx, `
UPDATE restaurants
SET name=$2, working_hours_start=$3, working_hours_end=$4, reservation_slot_minutes=$5,
    reservations_enabled=$6, time_zone=$7, updated_at=$8
WHERE id=$1`,
		restaurant.ID, restaurant.Name, restaurant.WorkingHoursStart, restaurant.WorkingHoursEnd,
		restaurant.ReservationSlotMinutes, restaurant.ReservationsEnabled, restaurant.TimeZone, restaurant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: restaurant %s", repository.ErrNotFound, restaurant.ID)
	}
	return nil
}

func (r *restaurantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM restaurants WHERE slug=$1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check restaurant slug: %w", err)
	}
	return exists, nil
}
