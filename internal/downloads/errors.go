package downloads

import "errors"

var (
	// ErrNotOwned indicates the user has no completed order for the product.
	ErrNotOwned = errors.New("downloads: product not owned")

	// ErrFileUnavailable indicates the product has no downloadable file.
	ErrFileUnavailable = errors.New("downloads: product file unavailable")

	// ErrLinkExpired indicates the download link passed its expiry.
	ErrLinkExpired = errors.New("downloads: download link expired")

	// ErrLimitReached indicates the download count limit was exhausted.
	ErrLimitReached = errors.New("downloads: download limit reached")

	// ErrMintFailed indicates the storage provider could not produce a
	// signed URL.
	ErrMintFailed = errors.New("downloads: failed to mint signed url")
)
