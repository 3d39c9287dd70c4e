// Package service implements the reservation engine: availability queries,
// conflict-safe booking and the reservation status machine.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablebook/internal/repository"
	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// restaurantClock is the restaurant's view of the current moment.
type restaurantClock struct {
	now   time.Time
	today string
}

func clockFor(r *model.Restaurant, now time.Time) (restaurantClock, error) {
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return restaurantClock{}, apperrors.Internal("Restaurant has an invalid time zone", err)
	}
	local := now.In(loc)
	return restaurantClock{now: local, today: local.Format(daytime.DateFormat)}, nil
}

// started reports whether t on date is at or before the current moment.
func (c restaurantClock) started(date string, t daytime.TimeOfDay) bool {
	if date != c.today {
		return date < c.today
	}
	secs := c.now.Hour()*3600 + c.now.Minute()*60 + c.now.Second()
	return t.Minutes()*60 <= secs
}

func workingHours(r *model.Restaurant) (daytime.Interval, error) {
	open, err := daytime.ParseTime(r.WorkingHoursStart)
	if err != nil {
		return daytime.Interval{}, apperrors.Internal("Restaurant has invalid working hours", err)
	}
	closing, err := daytime.ParseTime(r.WorkingHoursEnd)
	if err != nil {
		return daytime.Interval{}, apperrors.Internal("Restaurant has invalid working hours", err)
	}
	return daytime.Interval{Start: open, End: closing}, nil
}

// occupied returns the interval a stored reservation holds.
func occupied(res *model.Reservation) (daytime.Interval, error) {
	start, err := daytime.ParseTime(res.StartTime)
	if err != nil {
		return daytime.Interval{}, fmt.Errorf("reservation %s: %w", res.ID, err)
	}
	return daytime.NewInterval(start, res.DurationMinutes), nil
}

func findRestaurantByID(ctx context.Context, repo repository.RestaurantRepository, id string) (*model.Restaurant, error) {
	r, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", id)
		}
		return nil, apperrors.Internal("Failed to retrieve restaurant", err)
	}
	return r, nil
}

func findRestaurantBySlug(ctx context.Context, repo repository.RestaurantRepository, slug string) (*model.Restaurant, error) {
	r, err := repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Restaurant", slug)
		}
		return nil, apperrors.Internal("Failed to retrieve restaurant", err)
	}
	return r, nil
}

// contextError maps a cancelled or expired request onto an AppError.
// lockError maps a failed lock acquisition: a caller that gave up waiting
// gets a timeout, a broken lock backend gets 503.
func lockError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Timeout("Timed out waiting for the table")
	}
	appErr := apperrors.Unavailable("Table lock")
	appErr.Err = err
	return appErr
}

func contextError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Timeout(message)
	}
	return apperrors.Internal(message, err)
}
