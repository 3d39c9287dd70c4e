package handler

import (
	"net/http"

	"tablebook/internal/restaurants/service"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RestaurantHandler struct {
	service     service.RestaurantService
	requireAuth func(httprouter.Handle) httprouter.Handle
	log         *logger.Logger
}

func NewRestaurantHandler(service service.RestaurantService, requireAuth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		service:     service,
		requireAuth: requireAuth,
		log:         log,
	}
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var restaurant model.Restaurant
	if err := httputil.DecodeJSON(r, &restaurant); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), &restaurant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, created)
}

func (h *RestaurantHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	restaurant, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, restaurant)
}

func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.RestaurantUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	restaurant, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, restaurant)
}

func (h *RestaurantHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/restaurants", h.requireAuth(h.Create))
	router.GET("/api/v1/restaurants/:id", h.requireAuth(h.GetByID))
	router.PATCH("/api/v1/restaurants/:id", h.requireAuth(h.Update))
}
