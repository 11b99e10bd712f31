// Package principal carries the authenticated caller through request context.
package principal

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID snowflake.ID
	Role   authdomain.Role
}

type contextKey struct{}

func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// IsAdmin reports whether the context principal holds the ADMIN role.
func IsAdmin(ctx context.Context) bool {
	p, ok := FromContext(ctx)
	return ok && p.Role == authdomain.RoleAdmin
}
