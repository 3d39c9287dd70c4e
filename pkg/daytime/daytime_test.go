package daytime

import (
	"errors"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: " 19:00 ", want: 1140},
		{in: "24:00", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTime) {
					t.Fatalf("ParseTime(%q) error = %v, want ErrMalformedTime", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTime(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := MustParseTime("07:05").String(); got != "07:05" {
		t.Errorf("String() = %q, want 07:05", got)
	}
	if got := MustParseTime("23:00").Add(90).String(); got != "24:30" {
		t.Errorf("String() past midnight = %q, want 24:30", got)
	}
}

func TestParseDate(t *testing.T) {
	if got, err := ParseDate("2030-02-28"); err != nil || got != "2030-02-28" {
		t.Errorf("ParseDate() = %q, %v", got, err)
	}
	for _, bad := range []string{"2030-02-30", "30-02-2030", "2030/02/01", ""} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrMalformedDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrMalformedDate", bad, err)
		}
	}
}

func TestToday(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	now := time.Date(2030, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := Today(now, loc); got != "2030-01-02" {
		t.Errorf("Today() = %q, want 2030-01-02", got)
	}
}

func TestIntervalOverlaps(t *testing.T) {
	booked := NewInterval(MustParseTime("19:00"), 90)

	tests := []struct {
		name string
		req  Interval
		want bool
	}{
		{"same start", NewInterval(MustParseTime("19:00"), 90), true},
		{"starts inside", NewInterval(MustParseTime("20:00"), 90), true},
		{"ends inside", NewInterval(MustParseTime("18:00"), 90), true},
		{"contains", NewInterval(MustParseTime("18:00"), 240), true},
		{"touches end", NewInterval(MustParseTime("20:30"), 90), false},
		{"touches start", NewInterval(MustParseTime("17:30"), 90), false},
		{"far apart", NewInterval(MustParseTime("12:00"), 60), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Overlaps(booked); got != tt.want {
				t.Errorf("%s.Overlaps(%s) = %v, want %v", tt.req, booked, got, tt.want)
			}
			if got := booked.Overlaps(tt.req); got != tt.want {
				t.Errorf("overlap is not symmetric for %s", tt.req)
			}
		})
	}
}

func TestIntervalWithin(t *testing.T) {
	hours := Interval{Start: MustParseTime("09:00"), End: MustParseTime("22:00")}
	if !NewInterval(MustParseTime("20:30"), 90).Within(hours) {
		t.Error("20:30+90 should fit in 09:00-22:00")
	}
	if NewInterval(MustParseTime("21:00"), 90).Within(hours) {
		t.Error("21:00+90 should not fit in 09:00-22:00")
	}
	if NewInterval(MustParseTime("08:30"), 60).Within(hours) {
		t.Error("08:30+60 should not fit in 09:00-22:00")
	}
}
