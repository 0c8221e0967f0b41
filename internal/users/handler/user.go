package handler

import (
	"net/http"

	"bookspace/internal/users/service"
	"bookspace/pkg/auth"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	guard   *auth.Guard
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, guard *auth.Guard, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := auth.PrincipalFromContext(r.Context())

	user, err := h.service.GetMe(r.Context(), caller)
	if err != nil {
		h.writeError(w, "GetMe", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMe", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, _, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.UserFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
	}

	result, err := h.service.GetAll(r.Context(), filter, page, limit)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.Reject(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Remove(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	if err := httputil.WriteSuccess(w, model.Message{Message: "User removed"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Remove", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users/me", h.guard.Authenticate(h.GetMe))
	router.GET("/api/v1/users", h.guard.Admin(h.GetAll))
	router.PUT("/api/v1/users/id/:id/approve", h.guard.Admin(h.Approve))
	router.PUT("/api/v1/users/id/:id/reject", h.guard.Admin(h.Reject))
	router.DELETE("/api/v1/users/id/:id", h.guard.Admin(h.Remove))
}
