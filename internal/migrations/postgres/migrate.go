package postgres

import (
	"context"
	"fmt"

	"tablebook/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	Name  string
	Query string
}

var migrations = []migration{
	{
		Name: "restaurants",
		Query: `
CREATE TABLE IF NOT EXISTS restaurants (
	id                       TEXT PRIMARY KEY,
	slug                     TEXT NOT NULL UNIQUE,
	name                     TEXT NOT NULL,
	working_hours_start      TEXT NOT NULL,
	working_hours_end        TEXT NOT NULL,
	reservation_slot_minutes INTEGER NOT NULL CHECK (reservation_slot_minutes BETWEEN 5 AND 720),
	reservations_enabled     BOOLEAN NOT NULL DEFAULT TRUE,
	time_zone                TEXT NOT NULL,
	created_at               TIMESTAMPTZ NOT NULL,
	updated_at               TIMESTAMPTZ NOT NULL
)`,
	},
	{
		Name: "restaurant_tables",
		Query: `
CREATE TABLE IF NOT EXISTS restaurant_tables (
	id            TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL REFERENCES restaurants(id),
	number        TEXT NOT NULL,
	capacity      INTEGER NOT NULL CHECK (capacity BETWEEN 1 AND 100),
	zone          TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	sort_order    INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	UNIQUE (restaurant_id, number)
)`,
	},
	{
		Name: "reservations",
		Query: `
CREATE TABLE IF NOT EXISTS reservations (
	id               TEXT PRIMARY KEY,
	restaurant_id    TEXT NOT NULL REFERENCES restaurants(id),
	table_id         TEXT NOT NULL REFERENCES restaurant_tables(id),
	date             TEXT NOT NULL,
	start_time       TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	guests_count     INTEGER NOT NULL CHECK (guests_count >= 1),
	status           TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
	notes            TEXT NOT NULL DEFAULT '',
	guest_name       TEXT NOT NULL DEFAULT '',
	guest_phone      TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
)`,
	},
	{
		Name:  "reservations_table_date_idx",
		Query: `CREATE INDEX IF NOT EXISTS reservations_table_date_idx ON reservations (table_id, date, status)`,
	},
	{
		Name:  "reservations_restaurant_date_idx",
		Query: `CREATE INDEX IF NOT EXISTS reservations_restaurant_date_idx ON reservations (restaurant_id, date, start_time)`,
	},
}

// Migrate applies the schema. Every statement is idempotent so the job can be
// rerun against an existing database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	log.Info("Running Postgres migrations", "count", len(migrations))

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.Query); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		log.Info("Applied migration", "name", m.Name)
	}

	log.Info("All Postgres migrations applied")
	return nil
}
