package handler

import (
	"net/http"

	"bookspace/internal/stats/service"
	"bookspace/pkg/auth"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type StatsHandler struct {
	service service.StatsService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewStatsHandler(service service.StatsService, guard *auth.Guard, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StatsHandler) BookingsByMonth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	months, err := h.service.BookingsByMonth(r.Context())
	if err != nil {
		h.writeError(w, "BookingsByMonth", err)
		return
	}

	if err := httputil.WriteSuccess(w, months); err != nil {
		h.log.Error("failed to write success response", "handler", "BookingsByMonth", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StatsHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StatsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/stats", h.guard.Admin(h.Dashboard))
	router.GET("/api/v1/stats/bookings-by-month", h.guard.Admin(h.BookingsByMonth))
}
