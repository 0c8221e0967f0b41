package handler

import (
	"net/http"
	"time"

	"bookspace/internal/auth/service"
	"bookspace/pkg/auth"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"
	"bookspace/pkg/middleware"
	"bookspace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// CookieOptions controls the auth cookie set on login.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	service      service.AuthService
	loginLimiter *middleware.RateLimiter
	otpLimiter   *middleware.RateLimiter
	cookie       CookieOptions
	log          *logger.Logger
}

func NewAuthHandler(
	service service.AuthService,
	loginLimiter *middleware.RateLimiter,
	otpLimiter *middleware.RateLimiter,
	cookie CookieOptions,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		service:      service,
		loginLimiter: loginLimiter,
		otpLimiter:   otpLimiter,
		cookie:       cookie,
		log:          log,
	}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SendOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	if err := h.service.SendOTP(r.Context(), &req); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	h.writeMessage(w, "SendOTP", "OTP sent successfully")
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	user, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "Signup", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	auth.SetTokenCookie(w, resp.Token, h.cookie.TTL, h.cookie.Secure)
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	auth.ClearTokenCookie(w, h.cookie.Secure)
	h.writeMessage(w, "Logout", "Logged out successfully")
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ForgotPassword", err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		h.writeError(w, "ForgotPassword", err)
		return
	}

	h.writeMessage(w, "ForgotPassword", "OTP sent to your email")
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	if err := h.service.VerifyResetOTP(r.Context(), &req); err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	h.writeMessage(w, "VerifyOTP", "OTP verified successfully")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	h.writeMessage(w, "ResetPassword", "Password reset successfully")
}

func (h *AuthHandler) writeMessage(w http.ResponseWriter, name, message string) {
	if err := httputil.WriteSuccess(w, model.Message{Message: message}); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/send-otp", middleware.LimitRoute(h.otpLimiter, h.SendOTP))
	router.POST("/api/v1/auth/signup", middleware.LimitRoute(h.loginLimiter, h.Signup))
	router.POST("/api/v1/auth/login", middleware.LimitRoute(h.loginLimiter, h.Login))
	router.POST("/api/v1/auth/logout", h.Logout)
	router.POST("/api/v1/auth/forgot-password", middleware.LimitRoute(h.otpLimiter, h.ForgotPassword))
	router.POST("/api/v1/auth/verify-otp", middleware.LimitRoute(h.loginLimiter, h.VerifyOTP))
	router.POST("/api/v1/auth/reset-password", middleware.LimitRoute(h.loginLimiter, h.ResetPassword))
}
