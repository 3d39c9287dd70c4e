// Package daytime holds the calendar-day and time-of-day primitives shared by
// slot generation, availability and booking. Times of day are minutes since
// midnight; dates are "YYYY-MM-DD" strings in the restaurant's own zone.
package daytime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TimeFormat = "15:04"
	DateFormat = "2006-01-02"

	MinutesPerDay = 24 * 60
)

var (
	ErrMalformedTime = errors.New("time of day must be in HH:MM format (00:00-23:59)")
	ErrMalformedDate = errors.New("date must be in YYYY-MM-DD format")
)

// TimeOfDay is a number of minutes since midnight.
type TimeOfDay int

func ParseTime(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeFormat, s)
	if err != nil || len(s) != len(TimeFormat) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func MustParseTime(s string) TimeOfDay {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Of returns the time of day of t in t's location, truncated to the minute.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

// String formats t as HH:MM. Values past midnight (an interval end) render
// as 24:00 and beyond rather than wrapping.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseDate validates s and returns it normalised.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return d.Format(DateFormat), nil
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateFormat)
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewInterval(start TimeOfDay, durationMin int) Interval {
	return Interval{Start: start, End: start.Add(durationMin)}
}

// Overlaps reports whether i and other share at least one minute. Intervals
// that only touch at an endpoint do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Within reports whether i lies fully inside bounds.
func (i Interval) Within(bounds Interval) bool {
	return i.Start >= bounds.Start && i.End <= bounds.End
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}
