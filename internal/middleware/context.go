package middleware

import (
	"context"

	"github.com/soudigital/storefront/internal/identity"
)

type userContextKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *identity.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// CurrentUser retrieves the authenticated user placed in the context by the
// edge pipeline. The second return is false for anonymous requests.
func CurrentUser(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*identity.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
