package postgres

import (
	"context"
	"errors"
	"fmt"

	"tablebook/internal/repository"
	"tablebook/pkg/config"
	pgtx "tablebook/pkg/db/postgres"
	"tablebook/pkg/model"

	"github.com/jackc/pgx/v5"
)

const reservationColumns = `id, restaurant_id, table_id, date, start_time, duration_minutes, guests_count, status, notes, guest_name, guest_phone, created_at, updated_at`

type reservationRepository struct {
	base
	txManager pgtx.TransactionManager
}

func NewReservationRepository(cfg *config.Config) repository.ReservationRepository {
	return &reservationRepository{
		base: base{
			pool:         cfg.Client.Postgres,
			readTimeout:  cfg.ReadTimeout,
			writeTimeout: cfg.WriteTimeout,
		},
		txManager: pgtx.NewTransactionManager(cfg.Client.Postgres),
	}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	var status string
	err := row.Scan(
		&res.ID, &res.RestaurantID, &res.TableID, &res.Date, &res.StartTime, &res.DurationMinutes,
		&res.GuestsCount, &status, &res.Notes, &res.GuestName, &res.GuestPhone, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = model.ReservationStatus(status)
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	res.CreatedAt = now()
	res.UpdatedAt = res.CreatedAt
	_, err := r.conn(ctx).Exec(ctx, `
INSERT INTO reservations(`+reservationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		res.ID, res.RestaurantID, res.TableID, res.Date, res.StartTime, res.DurationMinutes, res.GuestsCount,
		string(res.Status), res.Notes, res.GuestName, res.GuestPhone, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: reservation %s", repository.ErrDuplicate, res.ID)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	res, err := scanReservation(r.conn(ctx).QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "reservation", id)
	}
	return res, nil
}

func (r *reservationRepository) FindActiveByTableAndDate(ctx context.Context, tableID, date string) ([]*model.Reservation, error) {
	return r.find(ctx, `
SELECT `+reservationColumns+`
FROM reservations
WHERE table_id=$1 AND date=$2 AND status = ANY($3)
ORDER BY start_time, table_id`, tableID, date, repository.ActiveStatusValues())
}

func (r *reservationRepository) FindActiveByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	return r.find(ctx, `
SELECT `+reservationColumns+`
FROM reservations
WHERE restaurant_id=$1 AND date=$2 AND status = ANY($3)
ORDER BY start_time, table_id`, restaurantID, date, repository.ActiveStatusValues())
}

func (r *reservationRepository) FindByRestaurantAndDate(ctx context.Context, restaurantID, date string) ([]*model.Reservation, error) {
	return r.find(ctx, `
SELECT `+reservationColumns+`
FROM reservations
WHERE restaurant_id=$1 AND date=$2
ORDER BY start_time, table_id`, restaurantID, date)
}

func (r *reservationRepository) find(ctx context.Context, query string, args ...any) ([]*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode reservations: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, expected, next model.ReservationStatus, notes *string) (*model.Reservation, error) {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	res, err := scanReservation(r.conn(ctx).QueryRow(ctx, `
UPDATE reservations
SET status=$3, notes=COALESCE($4, notes), updated_at=$5
WHERE id=$1 AND status=$2
RETURNING `+reservationColumns,
		id, string(expected), string(next), notes, now(),
	))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check reservation: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: reservation %s", repository.ErrNotFound, id)
	}
	return nil, fmt.Errorf("%w: reservation %s is no longer %s", repository.ErrStatusChanged, id, expected)
}

func (r *reservationRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
