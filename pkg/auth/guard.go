package auth

import (
	"errors"
	"net/http"
	"strings"

	apperrors "bookspace/pkg/errors"
	httputil "bookspace/pkg/http"
	"bookspace/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const (
	CookieName = "token"
	bearer     = "Bearer "
)

// Guard authenticates httprouter routes with a bearer token or the auth cookie.
type Guard struct {
	tokens *TokenService
	log    *logger.Logger
}

func NewGuard(tokens *TokenService, log *logger.Logger) *Guard {
	return &Guard{
		tokens: tokens,
		log:    log,
	}
}

func (g *Guard) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw := extractToken(r)
		if raw == "" {
			g.reject(w, apperrors.Unauthorized("No token, authorization denied"))
			return
		}

		principal, err := g.tokens.ValidateToken(raw)
		if err != nil {
			message := "Token is not valid"
			if errors.Is(err, ErrExpiredToken) {
				message = "Token has expired"
			}
			g.reject(w, apperrors.Unauthorized(message))
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), *principal)), ps)
	}
}

// RequireRole authenticates the caller and then requires one of roles.
func (g *Guard) RequireRole(next httprouter.Handle, roles ...string) httprouter.Handle {
	return g.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		principal, _ := PrincipalFromContext(r.Context())
		for _, role := range roles {
			if principal.Role == role {
				next(w, r, ps)
				return
			}
		}
		g.log.Warn("Access denied",
			"user_id", principal.UserID,
			"role", principal.Role,
			"required", roles,
			"path", r.URL.Path,
		)
		g.reject(w, apperrors.Forbidden("Access denied: insufficient permissions"))
	})
}

func (g *Guard) Admin(next httprouter.Handle) httprouter.Handle {
	return g.RequireRole(next, RoleAdmin)
}

func (g *Guard) reject(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		g.log.Error("failed to write error response", "handler", "Guard", "operation", "WriteError", "error", writeErr)
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearer) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearer))
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
