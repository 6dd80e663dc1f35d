package locale

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Config defines the supported locale set. The set is fixed at process start;
// exactly one default, which must be a member of Supported.
type Config struct {
	Supported []string `env:"LOCALE_SUPPORTED" envSeparator:"," envDefault:"en,pt"`
	Default   string   `env:"LOCALE_DEFAULT" envDefault:"en"`
}

// Resolver negotiates a supported locale from Accept-Language headers.
// Resolve never fails: any parsing or matching problem yields the default.
type Resolver struct {
	supported []string
	fallback  string
	matcher   language.Matcher
}

// NewResolver creates a Resolver from configuration.
func NewResolver(cfg Config) (*Resolver, error) {
	if len(cfg.Supported) == 0 {
		return nil, ErrNoLocales
	}
	if !slices.Contains(cfg.Supported, cfg.Default) {
		return nil, fmt.Errorf("%w: %q", ErrDefaultNotSupported, cfg.Default)
	}

	tags := make([]language.Tag, 0, len(cfg.Supported))
	for _, loc := range cfg.Supported {
		tag, err := language.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLocale, loc, err)
		}
		tags = append(tags, tag)
	}

	return &Resolver{
		supported: slices.Clone(cfg.Supported),
		fallback:  cfg.Default,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Default returns the configured default locale.
func (r *Resolver) Default() string {
	return r.fallback
}

// Supported returns the configured locale set in priority order.
func (r *Resolver) Supported() []string {
	return slices.Clone(r.supported)
}

// Resolve picks the best supported locale for an Accept-Language header.
// Wildcards and tags that are not plain "xx" or "xx-XX" are discarded before
// matching; an empty candidate list or any matcher failure yields the default.
func (r *Resolver) Resolve(acceptLanguage string) (resolved string) {
	resolved = r.fallback

	// The matcher must never take down a request.
	defer func() {
		if recover() != nil {
			resolved = r.fallback
		}
	}()

	candidates := parseCandidates(acceptLanguage)
	if len(candidates) == 0 {
		return r.fallback
	}

	tags := make([]language.Tag, 0, len(candidates))
	for _, c := range candidates {
		tag, err := language.Parse(c.tag)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return r.fallback
	}

	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(r.supported) {
		return r.fallback
	}
	return r.supported[idx]
}

// PathLocale returns the locale prefixing the path, checked against every
// supported locale. A prefix counts only as "/{locale}" exactly or
// "/{locale}/...".
func (r *Resolver) PathLocale(path string) (string, bool) {
	for _, loc := range r.supported {
		if path == "/"+loc || strings.HasPrefix(path, "/"+loc+"/") {
			return loc, true
		}
	}
	return "", false
}

// HasLocalePrefix reports whether the path already carries a supported locale.
func (r *Resolver) HasLocalePrefix(path string) bool {
	_, ok := r.PathLocale(path)
	return ok
}
