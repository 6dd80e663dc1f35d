package locale

import "errors"

var (
	// ErrNoLocales indicates an empty supported locale set.
	ErrNoLocales = errors.New("locale: no supported locales configured")

	// ErrDefaultNotSupported indicates the default locale is outside the
	// supported set.
	ErrDefaultNotSupported = errors.New("locale: default locale not in supported set")

	// ErrInvalidLocale indicates a supported locale tag failed to parse.
	ErrInvalidLocale = errors.New("locale: invalid locale tag")
)
