package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockRestaurantService struct {
	createFunc func(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error)
	updateFunc func(ctx context.Context, id string, updates *model.RestaurantUpdate) (*model.Restaurant, error)
}

func (m *mockRestaurantService) Create(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	return r, nil
}

func (m *mockRestaurantService) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	return nil, apperrors.NotFoundWithID("Restaurant", id)
}

func (m *mockRestaurantService) Update(ctx context.Context, id string, updates *model.RestaurantUpdate) (*model.Restaurant, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &model.Restaurant{ID: id}, nil
}

func passThrough(next httprouter.Handle) httprouter.Handle { return next }

func newRouter(svc *mockRestaurantService) *httprouter.Router {
	router := httprouter.New()
	NewRestaurantHandler(svc, passThrough, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate(t *testing.T) {
	var got *model.Restaurant
	router := newRouter(&mockRestaurantService{
		createFunc: func(ctx context.Context, r *model.Restaurant) (*model.Restaurant, error) {
			got = r
			r.ID, r.Slug = "id-1", "la-bella"
			return r, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/restaurants", strings.NewReader(`{"name":"La Bella","reservations_enabled":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.Name != "La Bella" || !got.ReservationsEnabled {
		t.Errorf("service got %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"slug":"la-bella"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router := newRouter(&mockRestaurantService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/restaurants/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	var got *model.RestaurantUpdate
	router := newRouter(&mockRestaurantService{
		updateFunc: func(ctx context.Context, id string, updates *model.RestaurantUpdate) (*model.Restaurant, error) {
			got = updates
			return &model.Restaurant{ID: id}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/restaurants/id-1", strings.NewReader(`{"reservations_enabled":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.ReservationsEnabled == nil || *got.ReservationsEnabled {
		t.Errorf("reservations_enabled not decoded as explicit false: %+v", got)
	}
	if got.ReservationSlotMinutes != nil {
		t.Errorf("absent field decoded: %+v", got)
	}
}
