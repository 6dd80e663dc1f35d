package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/logger"
)

// ProfileEnsurer creates a profile row on first sight of a user.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, user *identity.User) error
}

// EnsureProfile guarantees authenticated requests have a profile row before
// they reach handlers that reference it. Failures are logged and the request
// continues: the handler's own queries report the definitive error.
func EnsureProfile(profiles ProfileEnsurer, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := CurrentUser(r.Context()); ok {
				if err := profiles.Ensure(r.Context(), user); err != nil {
					log.WarnContext(r.Context(), "profile ensure failed",
						logger.Component("middleware"), logger.UserID(user.ID), logger.Error(err))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
