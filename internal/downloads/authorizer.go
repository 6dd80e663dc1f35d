// Package downloads gates access to purchased product files. It verifies
// ownership against completed orders, manages per-user download links with
// expiry and count limits, and mints short-lived signed URLs through the
// storage provider. Entitlement and minting are deliberately separate: the
// Authorizer only talks to storage and assumes the caller has already
// validated the purchase.
package downloads

import (
	"context"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/soudigital/storefront/internal/logger"
)

// ObjectStore is the storage surface the authorizer needs.
type ObjectStore interface {
	SignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
	List(ctx context.Context, dir, search string) ([]string, error)
}

// Authorizer mints time-limited download URLs for stored product files.
type Authorizer struct {
	store ObjectStore
	log   *slog.Logger
}

// NewAuthorizer creates an Authorizer. A nil logger discards output.
func NewAuthorizer(store ObjectStore, log *slog.Logger) *Authorizer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Authorizer{store: store, log: log}
}

// MintDownloadURL creates a signed URL for one file. Any provider failure,
// including a missing object, yields an empty string rather than an error;
// the cause is logged for operators. Zero expiry uses the storage default
// of one hour.
func (a *Authorizer) MintDownloadURL(ctx context.Context, filePath string, expiry time.Duration) string {
	url, err := a.store.SignedURL(ctx, filePath, expiry)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to mint signed download url",
			logger.Component("downloads"), logger.Path(filePath), logger.Error(err))
		return ""
	}
	return url
}

// FileExists probes the provider by listing the parent directory and checking
// for an exact filename match. Provider errors degrade to false.
func (a *Authorizer) FileExists(ctx context.Context, filePath string) bool {
	dir, name := path.Split(filePath)
	entries, err := a.store.List(ctx, dir, name)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to probe file existence",
			logger.Component("downloads"), logger.Path(filePath), logger.Error(err))
		return false
	}
	return len(entries) > 0
}
