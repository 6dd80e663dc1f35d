package downloads_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudigital/storefront/internal/downloads"
	"github.com/soudigital/storefront/internal/email"
	"github.com/soudigital/storefront/internal/identity"
)

// fakeStore implements downloads.ObjectStore.
type fakeStore struct {
	url     string
	signErr error
	entries []string
	listErr error
}

func (f *fakeStore) SignedURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.url, nil
}

func (f *fakeStore) List(_ context.Context, _, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

// fakeRow scans queued values into destinations by type.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		if i >= len(dest) {
			break
		}
		switch d := dest[i].(type) {
		case *bool:
			*d = v.(bool)
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *uuid.UUID:
			*d = v.(uuid.UUID)
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return nil
}

// fakeDB dispatches QueryRow by SQL substring.
type fakeDB struct {
	rows map[string]fakeRow
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	for match, row := range db.rows {
		if strings.Contains(sql, match) {
			return row
		}
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (db *fakeDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func TestAuthorizer(t *testing.T) {
	t.Parallel()

	t.Run("mints signed url", func(t *testing.T) {
		t.Parallel()

		a := downloads.NewAuthorizer(&fakeStore{url: "https://signed.example.com/f"}, nil)
		got := a.MintDownloadURL(context.Background(), "ebooks/go.pdf", time.Hour)
		assert.Equal(t, "https://signed.example.com/f", got)
	})

	t.Run("provider failure yields empty string", func(t *testing.T) {
		t.Parallel()

		a := downloads.NewAuthorizer(&fakeStore{signErr: errors.New("object not found")}, nil)
		assert.Empty(t, a.MintDownloadURL(context.Background(), "ebooks/missing.pdf", time.Hour))
	})

	t.Run("file exists via parent listing", func(t *testing.T) {
		t.Parallel()

		a := downloads.NewAuthorizer(&fakeStore{entries: []string{"go.pdf"}}, nil)
		assert.True(t, a.FileExists(context.Background(), "ebooks/go.pdf"))
	})

	t.Run("file existence degrades to false", func(t *testing.T) {
		t.Parallel()

		a := downloads.NewAuthorizer(&fakeStore{listErr: errors.New("timeout")}, nil)
		assert.False(t, a.FileExists(context.Background(), "ebooks/go.pdf"))

		a = downloads.NewAuthorizer(&fakeStore{entries: nil}, nil)
		assert.False(t, a.FileExists(context.Background(), "ebooks/go.pdf"))
	})
}

func TestValidator(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	linkID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("valid existing link", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS":       {values: []any{true}},
			"FROM download_links": {values: []any{linkID, "ebooks/go.pdf", now.Add(time.Hour), 1}},
		}}

		link, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		require.NoError(t, err)
		assert.Equal(t, linkID, link.ID)
		assert.Equal(t, "ebooks/go.pdf", link.FilePath)
	})

	t.Run("not owned", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS": {values: []any{false}},
		}}

		_, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		assert.ErrorIs(t, err, downloads.ErrNotOwned)
	})

	t.Run("creates link on first download", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS":              {values: []any{true}},
			"FROM products":              {values: []any{"ebooks/go.pdf"}},
			"INSERT INTO download_links": {values: []any{linkID}},
		}}

		link, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		require.NoError(t, err)
		assert.Equal(t, linkID, link.ID)
		assert.Equal(t, now.Add(downloads.DefaultLinkTTL), link.ExpiresAt)
		assert.Zero(t, link.DownloadCount)
	})

	t.Run("missing product file", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS": {values: []any{true}},
		}}

		_, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		assert.ErrorIs(t, err, downloads.ErrFileUnavailable)
	})

	t.Run("expired link", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS":       {values: []any{true}},
			"FROM download_links": {values: []any{linkID, "ebooks/go.pdf", now.Add(-time.Hour), 0}},
		}}

		_, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		assert.ErrorIs(t, err, downloads.ErrLinkExpired)
	})

	t.Run("exhausted limit", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS":       {values: []any{true}},
			"FROM download_links": {values: []any{linkID, "ebooks/go.pdf", now.Add(time.Hour), 5}},
		}}

		_, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		assert.ErrorIs(t, err, downloads.ErrLimitReached)
	})

	t.Run("ownership query failure propagates", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("connection reset")
		db := &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS": {err: dbErr},
		}}

		_, err := downloads.NewValidator(db, downloads.WithClock(clock)).Validate(context.Background(), userID, productID)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestValidatorTrack(t *testing.T) {
	t.Parallel()

	linkID := uuid.New()

	t.Run("counts a download", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"UPDATE download_links": {values: []any{3}},
		}}

		remaining, err := downloads.NewValidator(db).Track(context.Background(), linkID, "203.0.113.9")
		require.NoError(t, err)
		assert.Equal(t, 2, remaining)
	})

	t.Run("limit enforced at update time", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: map[string]fakeRow{
			"UPDATE download_links": {err: pgx.ErrNoRows},
		}}

		_, err := downloads.NewValidator(db).Track(context.Background(), linkID, "203.0.113.9")
		assert.ErrorIs(t, err, downloads.ErrLimitReached)
	})
}

// fakeSender records sent messages.
type fakeSender struct {
	sent []email.SendParams
	err  error
}

func (f *fakeSender) Send(_ context.Context, params email.SendParams) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, params)
	return nil
}

func TestService(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productID := uuid.New()
	linkID := uuid.New()
	user := &identity.User{ID: userID, Email: "ana@example.com"}

	validDB := func() *fakeDB {
		return &fakeDB{rows: map[string]fakeRow{
			"SELECT EXISTS":         {values: []any{true}},
			"FROM download_links":   {values: []any{linkID, "ebooks/go.pdf", time.Now().Add(time.Hour), 0}},
			"UPDATE download_links": {values: []any{1}},
		}}
	}

	t.Run("authorize returns signed url", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{url: "https://signed.example.com/f", entries: []string{"go.pdf"}}
		svc := downloads.NewService(
			downloads.NewValidator(validDB()),
			downloads.NewAuthorizer(store, nil),
			&fakeSender{}, nil,
		)

		url, err := svc.Authorize(context.Background(), user, productID, "203.0.113.9")
		require.NoError(t, err)
		assert.Equal(t, "https://signed.example.com/f", url)
	})

	t.Run("authorize rejects a missing file", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{url: "https://signed.example.com/f"}
		svc := downloads.NewService(
			downloads.NewValidator(validDB()),
			downloads.NewAuthorizer(store, nil),
			&fakeSender{}, nil,
		)

		_, err := svc.Authorize(context.Background(), user, productID, "203.0.113.9")
		assert.ErrorIs(t, err, downloads.ErrFileUnavailable)
	})

	t.Run("authorize surfaces mint failure", func(t *testing.T) {
		t.Parallel()

		svc := downloads.NewService(
			downloads.NewValidator(validDB()),
			downloads.NewAuthorizer(&fakeStore{signErr: errors.New("boom"), entries: []string{"go.pdf"}}, nil),
			&fakeSender{}, nil,
		)

		_, err := svc.Authorize(context.Background(), user, productID, "203.0.113.9")
		assert.ErrorIs(t, err, downloads.ErrMintFailed)
	})

	t.Run("emails download link", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		svc := downloads.NewService(
			downloads.NewValidator(validDB()),
			downloads.NewAuthorizer(&fakeStore{url: "https://signed.example.com/f", entries: []string{"go.pdf"}}, nil),
			sender, nil,
		)

		require.NoError(t, svc.EmailLink(context.Background(), user, productID, "Go Basics"))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "ana@example.com", sender.sent[0].To)
		assert.Contains(t, sender.sent[0].Subject, "Go Basics")
		assert.Contains(t, sender.sent[0].BodyHTML, "https://signed.example.com/f")
	})
}
