// Package identity is a thin client for the hosted identity provider. It
// validates access tokens, exchanges refresh tokens, and resolves the
// authenticated user. Session creation and destruction happen entirely on the
// provider side; this package only reads and refreshes.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config holds identity provider connection settings.
type Config struct {
	BaseURL        string        `env:"IDENTITY_BASE_URL,required"`
	APIKey         string        `env:"IDENTITY_API_KEY,required"`
	JWTSecret      string        `env:"IDENTITY_JWT_SECRET"`
	RequestTimeout time.Duration `env:"IDENTITY_REQUEST_TIMEOUT" envDefault:"10s"`
}

// User is the provider's handle for an authenticated account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the token pair returned by a refresh exchange.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`
}

// Client talks to a GoTrue-compatible identity API.
type Client struct {
	baseURL    string
	apiKey     string
	jwtSecret  string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates an identity client from configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		jwtSecret: cfg.JWTSecret,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetUser resolves the user behind an access token. An invalid or expired
// token yields ErrInvalidToken; transport and 5xx failures yield
// ErrProviderUnavailable.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if user.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user id", ErrMalformedResponse)
	}
	return &user, nil
}

// RefreshSession exchanges a refresh token for a new token pair. A rejected
// refresh token yields ErrInvalidToken.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=refresh_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return nil, fmt.Errorf("%w: missing tokens", ErrMalformedResponse)
	}
	return &session, nil
}

// InspectToken reads the access token claims using the configured JWT secret.
// See ParseClaims for verification semantics.
func (c *Client) InspectToken(accessToken string) (*TokenClaims, error) {
	return ParseClaims(accessToken, c.jwtSecret)
}
