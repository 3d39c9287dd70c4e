// Package slots generates the candidate start times offered to guests.
package slots

import (
	"iter"
	"time"

	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
)

// StepMinutes is the grid cadence. It does not depend on the reservation
// duration; a 90 minute booking still starts on a 30 minute grid.
const StepMinutes = 30

// ForDay returns the slot start times between start (inclusive) and end
// (exclusive) for date. now must already be in the restaurant's zone; when
// date is its calendar day, times at or before now are left out.
//
// The sequence is computed lazily and can be ranged over any number of times.
func ForDay(start, end, date string, now time.Time) (iter.Seq[daytime.TimeOfDay], error) {
	open, err := daytime.ParseTime(start)
	if err != nil {
		return nil, apperrors.Validation("Invalid working hours start", map[string]any{"error": err.Error()})
	}
	closing, err := daytime.ParseTime(end)
	if err != nil {
		return nil, apperrors.Validation("Invalid working hours end", map[string]any{"error": err.Error()})
	}
	day, err := daytime.ParseDate(date)
	if err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"error": err.Error()})
	}

	// Seconds since midnight of now, or -1 when date is not today.
	cutoff := -1
	if day == now.Format(daytime.DateFormat) {
		cutoff = now.Hour()*3600 + now.Minute()*60 + now.Second()
	}

	return func(yield func(daytime.TimeOfDay) bool) {
		for t := open; t < closing; t = t.Add(StepMinutes) {
			if t.Minutes()*60 <= cutoff {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}, nil
}
