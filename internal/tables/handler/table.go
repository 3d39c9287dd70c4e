package handler

import (
	"net/http"
	"strconv"

	"tablebook/internal/tables/service"
	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TableHandler struct {
	service     service.TableService
	requireAuth func(httprouter.Handle) httprouter.Handle
	log         *logger.Logger
}

func NewTableHandler(service service.TableService, requireAuth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *TableHandler {
	return &TableHandler{
		service:     service,
		requireAuth: requireAuth,
		log:         log,
	}
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var table model.Table
	if err := httputil.DecodeJSON(r, &table); err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), ps.ByName("id"), &table)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, created)
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	includeInactive := false
	if v := r.URL.Query().Get("include_inactive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, apperrors.InvalidInput("invalid include_inactive parameter: "+v))
			return
		}
		includeInactive = parsed
	}

	tables, err := h.service.List(r.Context(), ps.ByName("id"), includeInactive)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, tables, len(tables))
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.TableUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	table, err := h.service.Update(r.Context(), ps.ByName("id"), ps.ByName("table_id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, table)
}

func (h *TableHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/restaurants/:id/tables", h.requireAuth(h.List))
	router.POST("/api/v1/restaurants/:id/tables", h.requireAuth(h.Create))
	router.PATCH("/api/v1/restaurants/:id/tables/:table_id", h.requireAuth(h.Update))
}
