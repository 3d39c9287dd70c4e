package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tablebook/pkg/auth"
	"tablebook/pkg/client"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "wiring-test-secret"

func memoryConfig() *config.Config {
	return &config.Config{
		StoreBackend:             config.StoreMemory,
		LockBackend:              config.LockMemory,
		Port:                     "0",
		JWTSecret:                testSecret,
		JWTIssuer:                config.DefaultJWTIssuer,
		RateLimitRequests:        100,
		RateLimitWindow:          time.Minute,
		RequestTimeout:           5 * time.Second,
		IdempotencyTTL:           time.Minute,
		MaxRequestSize:           config.DefaultMaxRequestSize,
		ReadTimeout:              time.Second,
		WriteTimeout:             time.Second,
		IdleTimeout:              time.Second,
		ShutdownTimeout:          time.Second,
		DefaultSlotMinutes:       config.DefaultSlotMinutes,
		DefaultTimeZone:          config.DefaultTimeZone,
		DefaultWorkingHoursStart: config.DefaultWorkingHoursStart,
		DefaultWorkingHoursEnd:   config.DefaultWorkingHoursEnd,
		PhoneRegions:             []string{"IL", "US"},
		Log:                      logger.Discard(),
		Client:                   client.NewClient(),
	}
}

func issue(t *testing.T, role, restaurantID string) string {
	t.Helper()
	token, err := auth.NewAuthenticator(testSecret, config.DefaultJWTIssuer).Issue("tester", role, restaurantID, time.Hour)
	require.NoError(t, err)
	return token
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected *client.APIError, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, code, apiErr.Code)
}

func TestBuildServesReservationFlow(t *testing.T) {
	serverApp, err := build(memoryConfig())
	require.NoError(t, err)
	t.Cleanup(serverApp.StopWorkers)

	server := httptest.NewServer(serverApp.Handler())
	t.Cleanup(server.Close)

	ctx := context.Background()
	public := client.NewAPIClient(server.URL)
	admin := public.WithToken(issue(t, auth.RoleAdmin, ""))

	restaurant, err := admin.CreateRestaurant(ctx, &model.Restaurant{
		Name:                   "Trattoria Roma",
		WorkingHoursStart:      "10:00",
		WorkingHoursEnd:        "22:00",
		ReservationSlotMinutes: 90,
		ReservationsEnabled:    true,
		TimeZone:               "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, "trattoria-roma", restaurant.Slug)

	table, err := admin.CreateTable(ctx, restaurant.ID, &model.Table{Number: "T1", Capacity: 4})
	require.NoError(t, err)
	assert.True(t, table.IsActive)

	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	availability, err := public.Availability(ctx, restaurant.Slug, date, "19:00", 2)
	require.NoError(t, err)
	require.Len(t, availability.Tables, 1)
	assert.True(t, availability.Tables[0].Available)

	booking := &model.BookingRequest{TableID: table.ID, Date: date, StartTime: "19:00", GuestsCount: 2}
	first, err := public.Book(ctx, restaurant.Slug, booking, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status)
	assert.Equal(t, 90, first.DurationMinutes)

	replayed, err := public.Book(ctx, restaurant.Slug, booking, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replayed.ID)

	overlapping := &model.BookingRequest{TableID: table.ID, Date: date, StartTime: "20:00", GuestsCount: 2}
	_, err = public.Book(ctx, restaurant.Slug, overlapping, "attempt-2")
	requireAPIError(t, err, http.StatusConflict, apperrors.CodeConflict)

	_, err = public.GetReservation(ctx, first.ID)
	requireAPIError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)

	operator := public.WithToken(issue(t, auth.RoleOperator, restaurant.ID))
	confirmed, err := operator.UpdateReservation(ctx, first.ID, &model.ReservationUpdate{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)

	day, err := operator.ListReservations(ctx, restaurant.ID, date)
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, first.ID, day[0].ID)

	stranger := public.WithToken(issue(t, auth.RoleOperator, "00000000-0000-0000-0000-000000000000"))
	_, err = stranger.GetReservation(ctx, first.ID)
	requireAPIError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	resp, err := http.Get(server.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuildRejectsBadWiring(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"missing jwt secret", func(cfg *config.Config) { cfg.JWTSecret = "" }},
		{"unknown store", func(cfg *config.Config) { cfg.StoreBackend = "sqlite" }},
		{"mongo store without client", func(cfg *config.Config) { cfg.StoreBackend = config.StoreMongo }},
		{"redis lock without client", func(cfg *config.Config) { cfg.LockBackend = config.LockRedis }},
		{"postgres lock without pool", func(cfg *config.Config) { cfg.LockBackend = config.LockPostgres }},
		{"unknown phone region", func(cfg *config.Config) { cfg.PhoneRegions = []string{"XX"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			tt.mutate(cfg)
			_, err := build(cfg)
			assert.Error(t, err)
		})
	}
}
