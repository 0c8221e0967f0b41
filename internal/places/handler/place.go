package handler

import (
	"net/http"

	"bookspace/internal/places/service"
	"bookspace/pkg/auth"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PlaceHandler struct {
	service service.PlaceService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewPlaceHandler(service service.PlaceService, guard *auth.Guard, log *logger.Logger) *PlaceHandler {
	return &PlaceHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var place model.Place
	if err := httputil.DecodeJSON(r, &place); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &place); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, place); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PlaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	place, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, place); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PlaceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	places, total, err := h.service.GetAll(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, places, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PlaceUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	place, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, place); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PlaceHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PlaceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/places", h.guard.Authenticate(h.GetAll))
	router.GET("/api/v1/places/id/:id", h.guard.Authenticate(h.GetByID))
	router.POST("/api/v1/places", h.guard.Admin(h.Create))
	router.PATCH("/api/v1/places/id/:id", h.guard.Admin(h.Update))
	router.DELETE("/api/v1/places/id/:id", h.guard.Admin(h.Delete))
}
