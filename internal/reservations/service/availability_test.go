package service

import (
	"context"
	"testing"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotTimes(slots []model.SlotAvailability) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Time
	}
	return out
}

func slotAt(t *testing.T, slots []model.SlotAvailability, at string) model.SlotAvailability {
	t.Helper()
	for _, s := range slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("slot %s not offered", at)
	return model.SlotAvailability{}
}

func TestQuery_TodaySkipsElapsedSlots(t *testing.T) {
	f := newFixture(t, func(r *model.Restaurant) { r.WorkingHoursStart = "09:00" })

	got, err := f.availability.Query(context.Background(), &model.AvailabilityQuery{Slug: "la-bella", Date: today, Guests: 2})
	require.NoError(t, err)

	require.NotEmpty(t, got.Slots)
	assert.Equal(t, "14:30", got.Slots[0].Time)
	assert.Equal(t, "21:30", got.Slots[len(got.Slots)-1].Time)
	assert.NotContains(t, slotTimes(got.Slots), "14:00")
	assert.NotContains(t, slotTimes(got.Slots), "09:00")
	assert.Equal(t, 90, got.SlotDurationMinutes)
	assert.True(t, got.ReservationsEnabled)
}

func TestQuery_SlotGridIndependentOfDuration(t *testing.T) {
	f := newFixture(t)

	got, err := f.availability.Query(context.Background(), &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)

	require.Len(t, got.Slots, 24)
	assert.Equal(t, "10:00", got.Slots[0].Time)
	assert.Equal(t, "10:30", got.Slots[1].Time)
	assert.Equal(t, 3, got.Slots[0].AvailableTableCount)
}

func TestQuery_SlotsRunningPastClosingAreUnavailable(t *testing.T) {
	f := newFixture(t)

	got, err := f.availability.Query(context.Background(), &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)

	assert.True(t, slotAt(t, got.Slots, "20:30").Available, "20:30+90 ends exactly at closing")
	assert.False(t, slotAt(t, got.Slots, "21:00").Available)
	assert.Equal(t, 0, slotAt(t, got.Slots, "21:30").AvailableTableCount)
}

func TestQuery_CapacityFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Time: "19:00", Guests: 6})
	require.NoError(t, err)
	require.Len(t, got.Tables, 1)
	assert.Equal(t, "T3", got.Tables[0].Number)
	assert.Equal(t, "terrace", got.Tables[0].Zone)

	got, err = f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 8})
	require.NoError(t, err)
	assert.Equal(t, model.ReasonNoSuitableTable, got.Reason)
	assert.Empty(t, got.Slots)
}

func TestQuery_TableModeReflectsBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "T2", tomorrow, "19:00", 2)

	query := func(at string) map[string]bool {
		got, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Time: at, Guests: 2})
		require.NoError(t, err)
		out := map[string]bool{}
		for _, tbl := range got.Tables {
			out[tbl.Number] = tbl.Available
		}
		return out
	}

	assert.Equal(t, map[string]bool{"T1": true, "T2": false, "T3": true}, query("19:30"))
	assert.Equal(t, map[string]bool{"T1": true, "T2": false, "T3": true}, query("18:00"), "18:00+90 runs into 19:00")
	assert.Equal(t, map[string]bool{"T1": true, "T2": true, "T3": true}, query("17:30"), "17:30+90 ends at 19:00")
	assert.Equal(t, map[string]bool{"T1": true, "T2": true, "T3": true}, query("20:30"), "starts when 19:00+90 ends")
}

func TestQuery_SlotCountsDropWithBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "T1", tomorrow, "12:00", 2)
	f.book(t, "T2", tomorrow, "12:00", 2)

	got, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, slotAt(t, got.Slots, "12:00").AvailableTableCount)
	assert.Equal(t, 1, slotAt(t, got.Slots, "11:00").AvailableTableCount)
	assert.Equal(t, 3, slotAt(t, got.Slots, "13:30").AvailableTableCount)
}

func TestQuery_CancelFreesSlotForNextQuery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, "T2", tomorrow, "19:00", 2)

	tableAvailable := func() bool {
		got, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Time: "19:30", Guests: 2})
		require.NoError(t, err)
		for _, tbl := range got.Tables {
			if tbl.Number == "T2" {
				return tbl.Available
			}
		}
		t.Fatal("T2 missing from table mode")
		return false
	}
	slotCount := func() int {
		got, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
		require.NoError(t, err)
		return slotAt(t, got.Slots, "19:00").AvailableTableCount
	}

	assert.False(t, tableAvailable())
	assert.Equal(t, 2, slotCount())

	_, err := f.status.Update(f.operatorCtx(), res.ID, &model.ReservationUpdate{Status: model.StatusCancelled})
	require.NoError(t, err)

	assert.True(t, tableAvailable(), "a cancelled reservation no longer blocks its table")
	assert.Equal(t, 3, slotCount())
}

func TestQuery_IsRepeatable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, "T2", tomorrow, "19:00", 2)

	first, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)
	second, err := f.availability.Query(ctx, &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuery_Disabled(t *testing.T) {
	f := newFixture(t, func(r *model.Restaurant) { r.ReservationsEnabled = false })

	got, err := f.availability.Query(context.Background(), &model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow, Guests: 2})
	require.NoError(t, err)
	assert.False(t, got.ReservationsEnabled)
	assert.Equal(t, model.ReasonReservationsDisabled, got.Reason)
	assert.Empty(t, got.Slots)
}

func TestQuery_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query model.AvailabilityQuery
		code  string
	}{
		{"unknown slug", model.AvailabilityQuery{Slug: "nowhere", Date: tomorrow, Guests: 2}, apperrors.CodeNotFound},
		{"past date", model.AvailabilityQuery{Slug: "la-bella", Date: "2026-02-28", Guests: 2}, apperrors.CodeValidation},
		{"elapsed time today", model.AvailabilityQuery{Slug: "la-bella", Date: today, Time: "14:00", Guests: 2}, apperrors.CodeValidation},
		{"malformed date", model.AvailabilityQuery{Slug: "la-bella", Date: "2026/03/02", Guests: 2}, apperrors.CodeValidation},
		{"no guests", model.AvailabilityQuery{Slug: "la-bella", Date: tomorrow}, apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			_, err := f.availability.Query(ctx, &q)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestQuery_UsesRestaurantTimeZone(t *testing.T) {
	// 14:00 UTC is 23:00 in Tokyo, so "today" there has no slots left.
	f := newFixture(t, func(r *model.Restaurant) { r.TimeZone = "Asia/Tokyo" })

	got, err := f.availability.Query(context.Background(), &model.AvailabilityQuery{Slug: "la-bella", Date: today, Guests: 2})
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Skip("time zone database not available")
	}
	require.NoError(t, err)
	assert.Empty(t, got.Slots)
	assert.Equal(t, model.ReasonNoSlots, got.Reason)
}
