package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudigital/storefront/internal/locale"
)

func newResolver(t *testing.T) *locale.Resolver {
	t.Helper()
	r, err := locale.NewResolver(locale.Config{
		Supported: []string{"en", "pt"},
		Default:   "en",
	})
	require.NoError(t, err)
	return r
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty supported set", func(t *testing.T) {
		t.Parallel()

		_, err := locale.NewResolver(locale.Config{Default: "en"})
		assert.ErrorIs(t, err, locale.ErrNoLocales)
	})

	t.Run("rejects default outside supported set", func(t *testing.T) {
		t.Parallel()

		_, err := locale.NewResolver(locale.Config{
			Supported: []string{"en", "pt"},
			Default:   "fr",
		})
		assert.ErrorIs(t, err, locale.ErrDefaultNotSupported)
	})

	t.Run("rejects malformed supported tag", func(t *testing.T) {
		t.Parallel()

		_, err := locale.NewResolver(locale.Config{
			Supported: []string{"en", "!!"},
			Default:   "en",
		})
		assert.ErrorIs(t, err, locale.ErrInvalidLocale)
	})
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	r := newResolver(t)

	t.Run("empty header returns default", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "en", r.Resolve(""))
	})

	t.Run("malformed header returns default", func(t *testing.T) {
		t.Parallel()

		for _, header := range []string{
			";;;",
			"???",
			"*",
			"x",
			"english",
			"pt_BR", // underscore is not a valid separator
		} {
			assert.Equal(t, "en", r.Resolve(header), "header %q", header)
		}
	})

	t.Run("exact supported tag wins", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "pt", r.Resolve("pt"))
		assert.Equal(t, "en", r.Resolve("en"))
	})

	t.Run("regional variant matches base locale", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "pt", r.Resolve("pt-BR,pt;q=0.9,en;q=0.5"))
		assert.Equal(t, "en", r.Resolve("en-US,en;q=0.9"))
	})

	t.Run("quality ordering is respected", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "en", r.Resolve("pt;q=0.3,en;q=0.9"))
	})

	t.Run("wildcard entries are discarded", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "pt", r.Resolve("*,pt;q=0.8"))
		assert.Equal(t, "en", r.Resolve("*"))
	})

	t.Run("unsupported language falls back to default", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "en", r.Resolve("fr-FR,fr;q=0.9"))
	})

	t.Run("always returns a supported locale", func(t *testing.T) {
		t.Parallel()

		headers := []string{
			"", "*", "de,fr;q=0.9", "pt-BR", "en;q=0", "zz-ZZ",
			"pt;q=not-a-number", "a-very-long-and-invalid-header-value",
		}
		for _, header := range headers {
			got := r.Resolve(header)
			assert.Contains(t, []string{"en", "pt"}, got, "header %q", header)
		}
	})
}

func TestResolverPathLocale(t *testing.T) {
	t.Parallel()

	r := newResolver(t)

	t.Run("bare locale segment", func(t *testing.T) {
		t.Parallel()

		loc, ok := r.PathLocale("/pt")
		require.True(t, ok)
		assert.Equal(t, "pt", loc)
	})

	t.Run("locale prefixed path", func(t *testing.T) {
		t.Parallel()

		loc, ok := r.PathLocale("/en/products")
		require.True(t, ok)
		assert.Equal(t, "en", loc)
	})

	t.Run("segment that merely starts with a locale", func(t *testing.T) {
		t.Parallel()

		// "/pten" must not count as a "pt" prefix.
		assert.False(t, r.HasLocalePrefix("/pten"))
		assert.False(t, r.HasLocalePrefix("/entire-catalog"))
	})

	t.Run("unprefixed path", func(t *testing.T) {
		t.Parallel()

		assert.False(t, r.HasLocalePrefix("/products"))
		assert.False(t, r.HasLocalePrefix("/"))
	})
}
