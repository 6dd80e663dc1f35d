// Package profile reads and maintains application profiles layered on top of
// provider-owned user accounts. Profiles are read-mostly: the only write is
// the lazy creation on a user's first authenticated visit.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soudigital/storefront/internal/identity"
)

// Roles observed in profiles.role.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleUser     = "user"
)

// ErrNotFound indicates no profile exists for the user.
var ErrNotFound = errors.New("profile: not found")

// Profile is the application record extending a provider user.
type Profile struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     string
	Locale   string
	Currency string
}

// DB is the narrow database surface the store needs. *pgxpool.Pool satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides profile access over Postgres.
type Store struct {
	db DB
}

// NewStore creates a profile store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Role returns the profile role for a user. Missing profiles yield
// ErrNotFound; callers treat any error as "not admin".
func (s *Store) Role(ctx context.Context, userID uuid.UUID) (string, error) {
	var role string
	err := s.db.QueryRow(ctx,
		`SELECT role FROM profiles WHERE id = $1`,
		userID,
	).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("profile: select role: %w", err)
	}
	return role, nil
}

// Get returns the full profile for a user.
func (s *Store) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p := &Profile{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, full_name, role, locale, currency FROM profiles WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Locale, &p.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile: select profile: %w", err)
	}
	return p, nil
}

// Ensure creates a customer profile for the user if none exists yet.
// Safe to call on every authenticated callback.
func (s *Store) Ensure(ctx context.Context, user *identity.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("profile: ensure requires a user")
	}

	fullName := user.Email
	if at := strings.Index(user.Email, "@"); at > 0 {
		fullName = user.Email[:at]
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, role)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Email, fullName, RoleCustomer,
	)
	if err != nil {
		return fmt.Errorf("profile: ensure: %w", err)
	}
	return nil
}
