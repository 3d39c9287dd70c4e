// Package postgres implements the repository contracts on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/repository"
	pgtx "tablebook/pkg/db/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func wrapNotFound(err error, what, key string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", repository.ErrNotFound, what, key)
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

type base struct {
	pool         *pgxpool.Pool
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (b base) conn(ctx context.Context) pgtx.Querier {
	return pgtx.Conn(ctx, b.pool)
}

// Pinger checks that the pool can reach the server.
type Pinger struct {
	Pool *pgxpool.Pool
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
