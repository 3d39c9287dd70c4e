package postgres

import (
	"context"
	"fmt"

	"tablebook/internal/repository"
	"tablebook/pkg/config"
	pgtx "tablebook/pkg/db/postgres"
	"tablebook/pkg/model"

	"github.com/jackc/pgx/v5"
)

const tableColumns = `id, restaurant_id, number, capacity, zone, is_active, sort_order, created_at, updated_at`

type tableRepository struct{ base }

func NewTableRepository(cfg *config.Config) repository.TableRepository {
	return &tableRepository{base{
		pool:         cfg.Client.Postgres,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}}
}

func scanTable(row pgx.Row) (*model.Table, error) {
	var t model.Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Capacity, &t.Zone, &t.IsActive, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	table.CreatedAt = now()
	table.UpdatedAt = table.CreatedAt
	_, err := r.conn(ctx).Exec(ctx, `
INSERT INTO restaurant_tables(`+tableColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		table.ID, table.RestaurantID, table.Number, table.Capacity, table.Zone,
		table.IsActive, table.SortOrder, table.CreatedAt, table.UpdatedAt,
	)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: table number %s", repository.ErrDuplicate, table.Number)
		}
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *tableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	t, err := scanTable(r.conn(ctx).QueryRow(ctx, `SELECT `+tableColumns+` FROM restaurant_tables WHERE id=$1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "table", id)
	}
	return t, nil
}

func (r *tableRepository) FindByRestaurant(ctx context.Context, restaurantID string, activeOnly bool) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.readTimeout)
	defer cancel()

	rows, err := r.conn(ctx).Query(ctx, `
SELECT `+tableColumns+`
FROM restaurant_tables
WHERE restaurant_id=$1 AND (is_active OR NOT $2)
ORDER BY sort_order, number`, restaurantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	tables := []*model.Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode tables: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *tableRepository) Update(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	table.UpdatedAt = now()
	tag, err := r.conn(ctx).Exec(ctx, `
UPDATE restaurant_tables
SET number=$2, capacity=$3, zone=$4, is_active=$5, sort_order=$6, updated_at=$7
WHERE id=$1`,
		table.ID, table.Number, table.Capacity, table.Zone, table.IsActive, table.SortOrder, table.UpdatedAt,
	)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: table number %s", repository.ErrDuplicate, table.Number)
		}
		return fmt.Errorf("failed to update table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: table %s", repository.ErrNotFound, table.ID)
	}
	return nil
}
