package downloads

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/soudigital/storefront/internal/email"
	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/logger"
)

// Service orchestrates the gated download flow: entitlement validation,
// signed-URL minting, download tracking, and link delivery by mail.
type Service struct {
	validator  *Validator
	authorizer *Authorizer
	emails     email.Sender
	urlExpiry  time.Duration
	log        *slog.Logger
}

// NewService wires the download components together.
func NewService(validator *Validator, authorizer *Authorizer, emails email.Sender, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		validator:  validator,
		authorizer: authorizer,
		emails:     emails,
		urlExpiry:  time.Hour,
		log:        log,
	}
}

// Authorize runs the full download flow for one request and returns the
// signed URL to redirect to. Business rejections surface as the validator's
// sentinel errors; ErrMintFailed covers storage-side failures.
func (s *Service) Authorize(ctx context.Context, user *identity.User, productID uuid.UUID, clientIP string) (string, error) {
	link, err := s.validator.Validate(ctx, user.ID, productID)
	if err != nil {
		return "", err
	}

	url, err := s.mintChecked(ctx, link.FilePath)
	if err != nil {
		return "", err
	}

	remaining, err := s.validator.Track(ctx, link.ID, clientIP)
	if err != nil {
		return "", err
	}

	s.log.InfoContext(ctx, "download authorized",
		logger.Component("downloads"),
		logger.UserID(user.ID),
		slog.String("product_id", productID.String()),
		slog.Int("remaining_downloads", remaining),
	)
	return url, nil
}

// EmailLink mints a signed URL for an owned product and mails it to the user.
// The link is not counted against the download limit until it is used.
func (s *Service) EmailLink(ctx context.Context, user *identity.User, productID uuid.UUID, productName string) error {
	link, err := s.validator.Validate(ctx, user.ID, productID)
	if err != nil {
		return err
	}

	url, err := s.mintChecked(ctx, link.FilePath)
	if err != nil {
		return err
	}

	msg := email.DownloadLinkMessage(user.Email, email.DownloadLinkParams{
		ProductName: productName,
		URL:         url,
		ExpiryHours: int(s.urlExpiry.Hours()),
	})
	return s.emails.Send(ctx, msg)
}

// mintChecked probes the file and mints the signed URL in parallel. The two
// storage calls are independent, so a missing object is reported even when
// presigning would have succeeded.
func (s *Service) mintChecked(ctx context.Context, filePath string) (string, error) {
	var url string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if url = s.authorizer.MintDownloadURL(gctx, filePath, s.urlExpiry); url == "" {
			return ErrMintFailed
		}
		return nil
	})
	g.Go(func() error {
		if !s.authorizer.FileExists(gctx, filePath) {
			return ErrFileUnavailable
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return url, nil
}
