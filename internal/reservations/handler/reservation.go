package handler

import (
	"net/http"

	"tablebook/internal/reservations/service"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	availability service.AvailabilityService
	booking      service.BookingService
	status       service.StatusService
	requireAuth  func(httprouter.Handle) httprouter.Handle
	log          *logger.Logger
}

func NewReservationHandler(
	availability service.AvailabilityService,
	booking service.BookingService,
	status service.StatusService,
	requireAuth func(httprouter.Handle) httprouter.Handle,
	log *logger.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		availability: availability,
		booking:      booking,
		status:       status,
		requireAuth:  requireAuth,
		log:          log,
	}
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	guests, err := httputil.QueryInt(r, "guests", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	result, err := h.availability.Query(r.Context(), &model.AvailabilityQuery{
		Slug:   ps.ByName("slug"),
		Date:   query.Get("date"),
		Time:   query.Get("time"),
		Guests: guests,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (h *ReservationHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reservation, err := h.booking.BookBySlug(r.Context(), ps.ByName("slug"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, reservation)
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.status.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ReservationUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	reservation, err := h.status.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, reservation)
}

func (h *ReservationHandler) ListForDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	list, err := h.status.ListForDay(r.Context(), ps.ByName("id"), r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, list, len(list))
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/public/:slug/availability", h.Availability)
	router.POST("/api/v1/public/:slug/reservations", h.Book)

	router.GET("/api/v1/reservations/:id", h.requireAuth(h.GetByID))
	router.PATCH("/api/v1/reservations/:id", h.requireAuth(h.Update))
	router.GET("/api/v1/restaurants/:id/reservations", h.requireAuth(h.ListForDay))
}
