package handler

import (
	"context"
	"net/http"
	"time"

	"bookspace/internal/bookings/service"
	"bookspace/pkg/auth"
	apperrors "bookspace/pkg/errors"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard *auth.Guard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), caller(r), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), caller(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		Status:  query.Get("status"),
		PlaceID: query.Get("place_id"),
		UserID:  query.Get("user_id"),
	}

	bookings, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetApproved(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, to, err := window(r)
	if err != nil {
		h.writeError(w, "GetApproved", err)
		return
	}

	bookings, err := h.service.GetApproved(r.Context(), from, to)
	if err != nil {
		h.writeError(w, "GetApproved", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetApproved", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByPlace(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, to, err := window(r)
	if err != nil {
		h.writeError(w, "GetByPlace", err)
		return
	}

	bookings, err := h.service.GetApprovedByPlace(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "GetByPlace", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByPlace", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.GetMine(r.Context(), caller(r))
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	booking, err := h.service.Update(r.Context(), caller(r), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Approve", h.service.Approve)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Reject", h.service.Reject)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.decide(w, r, ps, "Cancel", h.service.Cancel)
}

type decision func(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)

// decide runs an administrative transition. The body is optional and may
// carry a note for the requester.
func (h *BookingHandler) decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, apply decision) {
	var body model.BookingDecision
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &body); err != nil {
			h.writeError(w, name, err)
			return
		}
	}

	booking, err := apply(r.Context(), caller(r), ps.ByName("id"), body.Note)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func caller(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func window(r *http.Request) (from, to *time.Time, err error) {
	if from, err = httputil.ParseOptionalTime(r, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = httputil.ParseOptionalTime(r, "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperrors.InvalidInput("from must be before to")
	}
	return from, to, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/check-availability", h.guard.Authenticate(h.CheckAvailability))
	router.POST("/api/v1/bookings", h.guard.Authenticate(h.Create))
	router.GET("/api/v1/bookings", h.guard.Admin(h.GetAll))
	router.GET("/api/v1/bookings/approved", h.guard.Authenticate(h.GetApproved))
	router.GET("/api/v1/bookings/mine", h.guard.Authenticate(h.GetMine))
	router.GET("/api/v1/bookings/id/:id", h.guard.Authenticate(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id", h.guard.Authenticate(h.Update))
	router.PUT("/api/v1/bookings/id/:id/approve", h.guard.Admin(h.Approve))
	router.PUT("/api/v1/bookings/id/:id/reject", h.guard.Admin(h.Reject))
	router.PUT("/api/v1/bookings/id/:id/cancel", h.guard.Authenticate(h.Cancel))
	router.GET("/api/v1/places/id/:id/bookings", h.guard.Authenticate(h.GetByPlace))
}
