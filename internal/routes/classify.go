// Package routes classifies request paths for the edge pipeline. The
// classification is a pure function of the path: it decides whether session
// refresh, admin guarding, and locale redirection apply at all.
package routes

import "strings"

// Class is the pipeline-relevant category of a request path.
type Class int

const (
	// ClassOther is a normal localized route.
	ClassOther Class = iota
	// ClassStaticAsset bypasses session refresh and locale logic entirely.
	ClassStaticAsset
	// ClassAdmin requires an authenticated user with the admin role.
	ClassAdmin
)

// String implements fmt.Stringer for log output.
func (c Class) String() string {
	switch c {
	case ClassStaticAsset:
		return "static_asset"
	case ClassAdmin:
		return "admin"
	default:
		return "other"
	}
}

// Config defines the path prefixes the classifier recognizes.
type Config struct {
	AssetPrefix string `env:"ROUTES_ASSET_PREFIX" envDefault:"/assets/"`
	FaviconPath string `env:"ROUTES_FAVICON_PATH" envDefault:"/favicon.ico"`
	AdminPrefix string `env:"ROUTES_ADMIN_PREFIX" envDefault:"/admin"`
	APIPrefix   string `env:"ROUTES_API_PREFIX" envDefault:"/api"`
}

// Classifier categorizes request paths.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier from configuration. Empty prefixes
// fall back to the standard storefront layout.
func NewClassifier(cfg Config) *Classifier {
	if cfg.AssetPrefix == "" {
		cfg.AssetPrefix = "/assets/"
	}
	if cfg.FaviconPath == "" {
		cfg.FaviconPath = "/favicon.ico"
	}
	if cfg.AdminPrefix == "" {
		cfg.AdminPrefix = "/admin"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return &Classifier{cfg: cfg}
}

// Classify categorizes a request path. Rules apply in order: asset prefix,
// favicon, or any dot in the path make it a static asset (the dot heuristic
// is intentionally coarse: a path segment containing a dot is treated as a
// file even when it is not truly static); then the admin prefix; everything
// else is a normal route.
func (c *Classifier) Classify(path string) Class {
	switch {
	case strings.HasPrefix(path, c.cfg.AssetPrefix),
		strings.HasPrefix(path, c.cfg.FaviconPath),
		strings.Contains(path, "."):
		return ClassStaticAsset
	case strings.HasPrefix(path, c.cfg.AdminPrefix):
		return ClassAdmin
	default:
		return ClassOther
	}
}

// Excluded reports whether the edge pipeline skips the path entirely.
// API routes handle sessions themselves and are never locale-prefixed.
func (c *Classifier) Excluded(path string) bool {
	return strings.HasPrefix(path, c.cfg.APIPrefix)
}
