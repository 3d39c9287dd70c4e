package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tablebook/pkg/model"
)

func TestAPIClientBookSendsHeaders(t *testing.T) {
	var gotKey, gotPhone, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/public/trattoria/reservations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get(IdempotencyKeyHeader)
		gotPhone = r.Header.Get(GuestPhoneHeader)
		gotContentType = r.Header.Get("Content-Type")

		var req model.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": model.Reservation{ID: "res-1", TableID: req.TableID, Status: model.StatusPending},
		})
	}))
	defer server.Close()

	c := NewAPIClient(server.URL + "/")
	res, err := c.Book(context.Background(), "trattoria", &model.BookingRequest{
		TableID:     "table-1",
		Date:        "2026-03-01",
		StartTime:   "19:00",
		GuestsCount: 2,
		GuestPhone:  "+14155550100",
	}, "key-1")
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if res.ID != "res-1" || res.TableID != "table-1" || res.Status != model.StatusPending {
		t.Errorf("unexpected reservation %+v", res)
	}
	if gotKey != "key-1" {
		t.Errorf("Idempotency-Key = %q", gotKey)
	}
	if gotPhone != "+14155550100" {
		t.Errorf("X-Guest-Phone = %q", gotPhone)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestAPIClientAvailabilityQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("date") != "2026-03-01" || q.Get("guests") != "4" || q.Get("time") != "" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": model.Availability{Date: "2026-03-01", Guests: 4, Slots: []model.SlotAvailability{{Time: "10:00", Available: true, AvailableTableCount: 2}}},
		})
	}))
	defer server.Close()

	a, err := NewAPIClient(server.URL).Availability(context.Background(), "trattoria", "2026-03-01", "", 4)
	if err != nil {
		t.Fatalf("Availability() error = %v", err)
	}
	if len(a.Slots) != 1 || a.Slots[0].AvailableTableCount != 2 {
		t.Errorf("unexpected slots %+v", a.Slots)
	}
}

func TestAPIClientDecodesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"INVALID_STATE_TRANSITION","error":"cannot move from cancelled to confirmed"}`))
	}))
	defer server.Close()

	c := NewAPIClient(server.URL).WithToken("secret-token")
	_, err := c.UpdateReservation(context.Background(), "res-1", &model.ReservationUpdate{Status: model.StatusConfirmed})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Code != "INVALID_STATE_TRANSITION" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestAPIClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewAPIClient(server.URL).GetReservation(context.Background(), "res-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != http.StatusText(http.StatusBadGateway) || apiErr.Message != "upstream down" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	base := NewAPIClient("http://localhost")
	operator := base.WithToken("t")
	if base.Token != "" || operator.Token != "t" {
		t.Errorf("base=%q operator=%q", base.Token, operator.Token)
	}
}
