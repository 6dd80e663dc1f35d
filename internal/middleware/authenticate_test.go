package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/middleware"
)

type fakeEnsurer struct {
	calls int
	err   error
}

func (f *fakeEnsurer) Ensure(context.Context, *identity.User) error {
	f.calls++
	return f.err
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("attaches the session user without redirecting", func(t *testing.T) {
		t.Parallel()

		id := &fakeIdentity{
			claims: freshClaims(userID),
			user:   &identity.User{ID: userID, Email: "shopper@example.com"},
		}
		r := httptest.NewRequest(http.MethodGet, "/api/download/abc", nil)
		r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "token"})

		var got *identity.User
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = middleware.CurrentUser(r.Context())
		})

		rec := httptest.NewRecorder()
		middleware.Authenticate(newRefresher(id))(next).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, userID, got.ID)
	})

	t.Run("anonymous requests reach the handler", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/api/download/abc", nil)

		reached := false
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { reached = true })

		rec := httptest.NewRecorder()
		middleware.Authenticate(newRefresher(&fakeIdentity{}))(next).ServeHTTP(rec, r)

		assert.True(t, reached)
	})
}

func TestEnsureProfile(t *testing.T) {
	t.Parallel()

	t.Run("creates the profile for authenticated requests", func(t *testing.T) {
		t.Parallel()

		ensurer := &fakeEnsurer{}
		r := httptest.NewRequest(http.MethodGet, "/api/download/abc", nil)
		r = r.WithContext(middleware.WithUser(r.Context(), &identity.User{ID: uuid.New()}))

		rec := httptest.NewRecorder()
		middleware.EnsureProfile(ensurer, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
			ServeHTTP(rec, r)

		assert.Equal(t, 1, ensurer.calls)
	})

	t.Run("skips anonymous requests and tolerates failures", func(t *testing.T) {
		t.Parallel()

		ensurer := &fakeEnsurer{err: assert.AnError}
		reached := false
		next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { reached = true })

		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/download/abc", nil)
		middleware.EnsureProfile(ensurer, nil)(next).ServeHTTP(rec, r)

		assert.Zero(t, ensurer.calls)
		assert.True(t, reached)

		r = r.WithContext(middleware.WithUser(r.Context(), &identity.User{ID: uuid.New()}))
		reached = false
		middleware.EnsureProfile(ensurer, nil)(next).ServeHTTP(httptest.NewRecorder(), r)

		assert.Equal(t, 1, ensurer.calls)
		assert.True(t, reached, "ensure failures must not block the request")
	})
}
