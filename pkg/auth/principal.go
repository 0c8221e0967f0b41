package auth

import "context"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

const RoleAdmin = "admin"

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
