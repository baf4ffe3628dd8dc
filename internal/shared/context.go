package shared

import "context"

// Principal describes the authenticated actor resolved from an access token.
// The role is the single role chosen at login; it scopes every permission
// check for the lifetime of the token.
type Principal struct {
	UserID   int64
	Username string
	RoleID   int64
	RoleName string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
