package middleware

import (
	"net/http"

	"github.com/soudigital/storefront/internal/cookies"
)

// Authenticate attaches the cookie-borne session user to the request
// context without redirecting. API routes use it instead of the edge
// pipeline: an anonymous request still reaches the handler, which decides
// whether authentication is required.
func Authenticate(sessions *SessionRefresher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			jar := cookies.NewJar(r)
			user := sessions.Refresh(r, jar)
			jar.Apply(w)
			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}
