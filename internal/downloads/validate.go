package downloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// DefaultLinkTTL is how long a freshly created download link stays valid.
	DefaultLinkTTL = 7 * 24 * time.Hour

	// DefaultMaxDownloads bounds downloads per link.
	DefaultMaxDownloads = 5
)

// DB is the narrow database surface the validator needs. *pgxpool.Pool
// satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Link is a stored download link.
type Link struct {
	ID            uuid.UUID
	FilePath      string
	ExpiresAt     time.Time
	DownloadCount int
}

// Validator enforces the download entitlement rules: a completed order, an
// unexpired link, and an unexhausted download limit.
type Validator struct {
	db           DB
	linkTTL      time.Duration
	maxDownloads int
	now          func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithLinkTTL overrides the link lifetime.
func WithLinkTTL(ttl time.Duration) ValidatorOption {
	return func(v *Validator) {
		if ttl > 0 {
			v.linkTTL = ttl
		}
	}
}

// WithMaxDownloads overrides the per-link download limit.
func WithMaxDownloads(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.maxDownloads = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a Validator.
func NewValidator(db DB, opts ...ValidatorOption) *Validator {
	v := &Validator{
		db:           db,
		linkTTL:      DefaultLinkTTL,
		maxDownloads: DefaultMaxDownloads,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks that the user may download the product and returns the
// usable link, creating one on first download. Business rejections surface
// as sentinel errors (ErrNotOwned, ErrLinkExpired, ErrLimitReached,
// ErrFileUnavailable); anything else is a database failure.
func (v *Validator) Validate(ctx context.Context, userID, productID uuid.UUID) (*Link, error) {
	owned, err := v.owns(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotOwned
	}

	link, err := v.link(ctx, userID, productID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		link, err = v.createLink(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
	}

	if link.ExpiresAt.Before(v.now()) {
		return nil, ErrLinkExpired
	}
	if link.DownloadCount >= v.maxDownloads {
		return nil, ErrLimitReached
	}
	return link, nil
}

// Track records one download against the link and stores the client IP.
// The limit check runs again here so concurrent requests cannot slip past
// Validate.
func (v *Validator) Track(ctx context.Context, linkID uuid.UUID, clientIP string) (remaining int, err error) {
	var count int
	err = v.db.QueryRow(ctx,
		`UPDATE download_links
		    SET download_count = download_count + 1,
		        ip_addresses = array_append(ip_addresses, $2),
		        last_downloaded_at = now()
		  WHERE id = $1 AND download_count < $3
		  RETURNING download_count`,
		linkID, clientIP, v.maxDownloads,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("downloads: track: %w", err)
	}
	return v.maxDownloads - count, nil
}

// MaxDownloads returns the configured per-link limit.
func (v *Validator) MaxDownloads() int {
	return v.maxDownloads
}

func (v *Validator) owns(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := v.db.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1
		      FROM order_items oi
		      JOIN orders o ON o.id = oi.order_id
		     WHERE oi.product_id = $1
		       AND o.user_id = $2
		       AND o.status = 'completed'
		 )`,
		productID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("downloads: ownership check: %w", err)
	}
	return exists, nil
}

func (v *Validator) link(ctx context.Context, userID, productID uuid.UUID) (*Link, error) {
	link := &Link{}
	err := v.db.QueryRow(ctx,
		`SELECT dl.id, p.file_path, dl.expires_at, dl.download_count
		   FROM download_links dl
		   JOIN products p ON p.id = dl.product_id
		  WHERE dl.user_id = $1 AND dl.product_id = $2`,
		userID, productID,
	).Scan(&link.ID, &link.FilePath, &link.ExpiresAt, &link.DownloadCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("downloads: select link: %w", err)
	}
	return link, nil
}

func (v *Validator) createLink(ctx context.Context, userID, productID uuid.UUID) (*Link, error) {
	var filePath string
	err := v.db.QueryRow(ctx,
		`SELECT file_path FROM products WHERE id = $1`,
		productID,
	).Scan(&filePath)
	if err != nil || filePath == "" {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("downloads: select product file: %w", err)
		}
		return nil, ErrFileUnavailable
	}

	link := &Link{
		FilePath:  filePath,
		ExpiresAt: v.now().Add(v.linkTTL),
	}
	err = v.db.QueryRow(ctx,
		`INSERT INTO download_links (user_id, product_id, expires_at, download_count, ip_addresses)
		 VALUES ($1, $2, $3, 0, '{}')
		 RETURNING id`,
		userID, productID, link.ExpiresAt,
	).Scan(&link.ID)
	if err != nil {
		return nil, fmt.Errorf("downloads: create link: %w", err)
	}
	return link, nil
}
