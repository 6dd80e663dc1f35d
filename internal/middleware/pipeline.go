package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/soudigital/storefront/internal/cookies"
	"github.com/soudigital/storefront/internal/locale"
	"github.com/soudigital/storefront/internal/logger"
	"github.com/soudigital/storefront/internal/profile"
	"github.com/soudigital/storefront/internal/routes"
)

// RoleStore looks up the role recorded for a user's profile.
type RoleStore interface {
	Role(ctx context.Context, userID uuid.UUID) (string, error)
}

// PipelineConfig wires the edge pipeline's collaborators.
type PipelineConfig struct {
	// Locales resolves the request locale and recognizes prefixed paths.
	// Required.
	Locales *locale.Resolver

	// Routes classifies paths into static assets, admin routes, and
	// storefront pages. Required.
	Routes *routes.Classifier

	// Sessions refreshes the cookie-borne session. Required.
	Sessions *SessionRefresher

	// Profiles resolves user roles for admin guarding. Required.
	Profiles RoleStore

	// LoginPath is the locale-relative sign-in page admin requests are sent
	// to when no session is present. Defaults to "/auth/login".
	LoginPath string

	// Skip reports whether a request bypasses the pipeline entirely.
	// Defaults to the classifier's exclusion rule (API routes).
	Skip func(r *http.Request) bool

	// Logger for guard decisions. A nil logger discards output.
	Logger *slog.Logger
}

// Pipeline returns the storefront's edge middleware. For every non-excluded
// request it classifies the path, then either passes static assets through
// untouched, enforces admin access, or synthesizes a locale-prefixed
// redirect for bare storefront paths. Cookie changes made while refreshing
// the session are flushed onto whichever response the pipeline produces.
func Pipeline(cfg PipelineConfig) func(http.Handler) http.Handler {
	if cfg.Locales == nil {
		panic("middleware: locale resolver is required")
	}
	if cfg.Routes == nil {
		panic("middleware: route classifier is required")
	}
	if cfg.Sessions == nil {
		panic("middleware: session refresher is required")
	}
	if cfg.Profiles == nil {
		panic("middleware: role store is required")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.Skip == nil {
		cfg.Skip = func(r *http.Request) bool { return cfg.Routes.Excluded(r.URL.Path) }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			switch cfg.Routes.Classify(path) {
			case routes.ClassStaticAsset:
				// Assets never touch the identity provider and never
				// redirect.
				next.ServeHTTP(w, r)
			case routes.ClassAdmin:
				guardAdmin(cfg, next, w, r)
			default:
				localizeStorefront(cfg, next, w, r)
			}
		})
	}
}

// guardAdmin refreshes the session and admits only users whose profile role
// is admin. Anonymous visitors are sent to the sign-in page with the
// original path preserved; signed-in non-admins land on the localized home
// page. Role lookup failures deny access rather than granting it.
func guardAdmin(cfg PipelineConfig, next http.Handler, w http.ResponseWriter, r *http.Request) {
	jar := cookies.NewJar(r)
	user := cfg.Sessions.Refresh(r, jar)
	def := cfg.Locales.Default()

	if user == nil {
		target := "/" + def + cfg.LoginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
		jar.Apply(w)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	role, err := cfg.Profiles.Role(r.Context(), user.ID)
	if err != nil {
		cfg.Logger.WarnContext(r.Context(), "role lookup failed, denying admin access",
			logger.Component("pipeline"), logger.UserID(user.ID), logger.Error(err))
	}
	if err != nil || role != profile.RoleAdmin {
		jar.Apply(w)
		http.Redirect(w, r, "/"+def, http.StatusFound)
		return
	}

	jar.Apply(w)
	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
}

// localizeStorefront refreshes the session, then redirects bare paths to
// their locale-prefixed form. Already-prefixed paths pass straight through,
// which keeps the redirect a single hop.
func localizeStorefront(cfg PipelineConfig, next http.Handler, w http.ResponseWriter, r *http.Request) {
	jar := cookies.NewJar(r)
	user := cfg.Sessions.Refresh(r, jar)

	if !cfg.Locales.HasLocalePrefix(r.URL.Path) {
		loc := cfg.Locales.Resolve(r.Header.Get("Accept-Language"))
		target := "/" + loc + r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		jar.Apply(w)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	jar.Apply(w)
	if user != nil {
		r = r.WithContext(WithUser(r.Context(), user))
	}
	next.ServeHTTP(w, r)
}
