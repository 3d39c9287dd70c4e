// Package lock provides keyed mutual exclusion for the booking write path.
// A key names one table on one calendar day; holders of different keys
// never wait on each other.
package lock

import (
	"context"
	"fmt"
	"time"
)

// ReleaseFunc gives the lock back. Callers should pass a context that is not
// already cancelled so release still reaches the backend after a timeout.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	// Acquire blocks until the key is held or ctx is done.
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// Key returns the lock key for a table on a date.
func Key(tableID, date string) string {
	return fmt.Sprintf("reservation_lock_%s_%s", tableID, date)
}

const maxBackoff = 500 * time.Millisecond

// backoff doubles d up to maxBackoff.
func backoff(d time.Duration) time.Duration {
	return min(d*2, maxBackoff)
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
