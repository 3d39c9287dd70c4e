package slots

import (
	"slices"
	"testing"
	"time"

	"tablebook/pkg/daytime"
	apperrors "tablebook/pkg/errors"
)

func collect(t *testing.T, start, end, date string, now time.Time) []string {
	t.Helper()
	seq, err := ForDay(start, end, date, now)
	if err != nil {
		t.Fatalf("ForDay() error = %v", err)
	}
	var out []string
	for slot := range seq {
		out = append(out, slot.String())
	}
	return out
}

func TestForDay(t *testing.T) {
	futureNow := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start string
		end   string
		date  string
		now   time.Time
		want  []string
	}{
		{
			name:  "future day covers full grid excluding end",
			start: "09:00", end: "11:00", date: "2030-01-02", now: futureNow,
			want: []string{"09:00", "09:30", "10:00", "10:30"},
		},
		{
			name:  "same day drops past slots",
			start: "12:00", end: "16:00", date: "2030-05-10",
			now:  time.Date(2030, 5, 10, 14, 0, 0, 0, time.UTC),
			want: []string{"14:30", "15:00", "15:30"},
		},
		{
			name:  "today at 14:00 with 09:00-22:00 hours starts at 14:30",
			start: "09:00", end: "22:00", date: "2030-05-10",
			now:  time.Date(2030, 5, 10, 14, 0, 0, 0, time.UTC),
			want: []string{
				"14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30", "18:00",
				"18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30",
			},
		},
		{
			name:  "same day keeps slot starting a second later",
			start: "14:00", end: "15:00", date: "2030-05-10",
			now:  time.Date(2030, 5, 10, 13, 59, 59, 0, time.UTC),
			want: []string{"14:00", "14:30"},
		},
		{
			name:  "same day seconds past the slot drop it",
			start: "14:00", end: "15:00", date: "2030-05-10",
			now:  time.Date(2030, 5, 10, 14, 0, 30, 0, time.UTC),
			want: []string{"14:30"},
		},
		{
			name:  "grid anchored on start not on hour",
			start: "09:15", end: "10:30", date: "2030-01-02", now: futureNow,
			want: []string{"09:15", "09:45", "10:15"},
		},
		{
			name:  "end before start is empty",
			start: "22:00", end: "09:00", date: "2030-01-02", now: futureNow,
			want: nil,
		},
		{
			name:  "end equal to start is empty",
			start: "09:00", end: "09:00", date: "2030-01-02", now: futureNow,
			want: nil,
		},
		{
			name:  "same day after closing is empty",
			start: "09:00", end: "22:00", date: "2030-05-10",
			now:  time.Date(2030, 5, 10, 23, 0, 0, 0, time.UTC),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.start, tt.end, tt.date, tt.now)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ForDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForDay_GridProperty(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	seq, err := ForDay("08:00", "23:30", "2030-01-02", now)
	if err != nil {
		t.Fatalf("ForDay() error = %v", err)
	}

	open := daytime.MustParseTime("08:00")
	closing := daytime.MustParseTime("23:30")
	for slot := range seq {
		if slot < open || slot >= closing {
			t.Errorf("slot %s outside [%s, %s)", slot, open, closing)
		}
		if (slot-open).Minutes()%StepMinutes != 0 {
			t.Errorf("slot %s not on the %d minute grid", slot, StepMinutes)
		}
	}
}

func TestForDay_Restartable(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	seq, err := ForDay("09:00", "12:00", "2030-01-02", now)
	if err != nil {
		t.Fatalf("ForDay() error = %v", err)
	}

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Errorf("second pass = %v, first pass = %v", second, first)
	}

	// Early termination must not disturb later passes.
	for range seq {
		break
	}
	if third := slices.Collect(seq); !slices.Equal(first, third) {
		t.Errorf("pass after break = %v, want %v", third, first)
	}
}

func TestForDay_Malformed(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name             string
		start, end, date string
	}{
		{"bad start", "9am", "22:00", "2030-01-01"},
		{"bad end", "09:00", "25:00", "2030-01-01"},
		{"bad date", "09:00", "22:00", "01/02/2030"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForDay(tt.start, tt.end, tt.date, now)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Errorf("ForDay() error = %v, want validation error", err)
			}
		})
	}
}
