package identity

import "errors"

var (
	// ErrInvalidConfig indicates missing or malformed client configuration.
	ErrInvalidConfig = errors.New("identity: invalid config")

	// ErrInvalidToken indicates the provider rejected the presented token.
	// This is a normal outcome for expired or signed-out sessions.
	ErrInvalidToken = errors.New("identity: invalid or expired token")

	// ErrProviderUnavailable indicates a transport failure or provider-side
	// error. Callers treat it the same as "no session".
	ErrProviderUnavailable = errors.New("identity: provider unavailable")

	// ErrMalformedResponse indicates the provider returned an unparseable body.
	ErrMalformedResponse = errors.New("identity: malformed provider response")

	// ErrMalformedToken indicates the access token is not a parseable JWT.
	ErrMalformedToken = errors.New("identity: malformed access token")
)
