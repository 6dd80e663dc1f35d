// Package email sends transactional storefront mail. The only message this
// service sends itself is download-link delivery; everything else (receipts,
// auth mail) is owned by the hosted providers.
package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
)

var (
	// ErrInvalidConfig indicates missing sender configuration.
	ErrInvalidConfig = errors.New("email: invalid config")

	// ErrInvalidParams indicates an unsendable message.
	ErrInvalidParams = errors.New("email: invalid send parameters")

	// ErrSendFailed indicates the provider rejected or failed the send.
	ErrSendFailed = errors.New("email: failed to send")
)

// SendParams describes one outgoing message.
type SendParams struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks the message is sendable.
func (p SendParams) Validate() error {
	if p.To == "" || !emailPattern.MatchString(p.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidParams, p.To)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidParams)
	}
	return nil
}

// Sender delivers transactional mail.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// DownloadLinkParams fills the download-link template.
type DownloadLinkParams struct {
	ProductName string
	URL         string
	ExpiryHours int
}

// DownloadLinkMessage renders the download-link delivery message.
func DownloadLinkMessage(to string, p DownloadLinkParams) SendParams {
	return SendParams{
		To:      to,
		Subject: fmt.Sprintf("Your download link for %s", p.ProductName),
		Tag:     "download_link",
		BodyHTML: fmt.Sprintf(
			`<p>Here is your download link for <strong>%s</strong>:</p>`+
				`<p><a href="%s">Download now</a></p>`+
				`<p>The link expires in %d hour(s). You can request a new one from your account page.</p>`,
			html.EscapeString(p.ProductName),
			html.EscapeString(p.URL),
			p.ExpiryHours,
		),
	}
}
