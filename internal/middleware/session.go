package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/soudigital/storefront/internal/cookies"
	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/logger"
)

// SessionConfig configures the session refresher. Cookie names follow the
// hosted identity provider's convention.
type SessionConfig struct {
	AccessCookie  string        `env:"SESSION_ACCESS_COOKIE" envDefault:"sb-access-token"`
	RefreshCookie string        `env:"SESSION_REFRESH_COOKIE" envDefault:"sb-refresh-token"`
	RefreshLeeway time.Duration `env:"SESSION_REFRESH_LEEWAY" envDefault:"60s"`
	CookieMaxAge  int           `env:"SESSION_COOKIE_MAX_AGE" envDefault:"604800"` // 7 days
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
}

// IdentityClient is the provider surface the refresher needs.
type IdentityClient interface {
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
	InspectToken(accessToken string) (*identity.TokenClaims, error)
}

// SessionRefresher validates or refreshes the session carried in the request
// cookies. "No session" is a normal outcome, never an error: every failure
// path degrades to an anonymous user, and only admin guarding later decides
// whether anonymity blocks the request.
type SessionRefresher struct {
	client IdentityClient
	cfg    SessionConfig
	log    *slog.Logger
}

// NewSessionRefresher creates a refresher. A nil logger discards output.
func NewSessionRefresher(client IdentityClient, cfg SessionConfig, log *slog.Logger) *SessionRefresher {
	if client == nil {
		panic("session refresher: identity client is required")
	}
	if cfg.AccessCookie == "" {
		cfg.AccessCookie = "sb-access-token"
	}
	if cfg.RefreshCookie == "" {
		cfg.RefreshCookie = "sb-refresh-token"
	}
	if cfg.RefreshLeeway <= 0 {
		cfg.RefreshLeeway = time.Minute
	}
	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = 7 * 24 * 60 * 60
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SessionRefresher{client: client, cfg: cfg, log: log}
}

// Refresh resolves the request's session to a user, refreshing the token
// pair when the access token is missing, expired, or about to expire. New
// or cleared cookies are recorded in the jar so they reach both the rest of
// this pass and the final response.
func (s *SessionRefresher) Refresh(r *http.Request, jar *cookies.Jar) *identity.User {
	ctx := r.Context()

	accessToken, hasAccess := jar.Get(s.cfg.AccessCookie)
	refreshToken, hasRefresh := jar.Get(s.cfg.RefreshCookie)

	if !hasAccess && !hasRefresh {
		return nil
	}

	if hasAccess {
		claims, err := s.client.InspectToken(accessToken)
		if err == nil && !claims.ExpiresWithin(s.cfg.RefreshLeeway) {
			user, err := s.client.GetUser(ctx, accessToken)
			if err == nil {
				return user
			}
			s.log.DebugContext(ctx, "access token rejected, attempting refresh",
				logger.Component("session"), logger.Error(err))
		}
	}

	if !hasRefresh {
		return nil
	}

	session, err := s.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			// Stale cookies keep the client retrying a dead session.
			jar.Remove(s.cfg.AccessCookie, cookies.WithSecure(s.cfg.CookieSecure))
			jar.Remove(s.cfg.RefreshCookie, cookies.WithSecure(s.cfg.CookieSecure))
		} else {
			s.log.WarnContext(ctx, "session refresh failed, continuing anonymous",
				logger.Component("session"), logger.Error(err))
		}
		return nil
	}

	opts := []cookies.Option{
		cookies.WithMaxAge(s.cfg.CookieMaxAge),
		cookies.WithSecure(s.cfg.CookieSecure),
	}
	jar.Set(s.cfg.AccessCookie, session.AccessToken, opts...)
	jar.Set(s.cfg.RefreshCookie, session.RefreshToken, opts...)

	if session.User != nil {
		return session.User
	}

	user, err := s.client.GetUser(ctx, session.AccessToken)
	if err != nil {
		s.log.WarnContext(ctx, "user lookup failed after refresh",
			logger.Component("session"), logger.Error(err))
		return nil
	}
	return user
}
