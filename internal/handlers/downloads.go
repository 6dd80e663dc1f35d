// Package handlers holds the storefront's API endpoints. Each handler is a
// thin HTTP adapter: it extracts request data, calls a domain service, and
// maps the service's sentinel errors to status codes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soudigital/storefront/internal/downloads"
	"github.com/soudigital/storefront/internal/identity"
	"github.com/soudigital/storefront/internal/logger"
	"github.com/soudigital/storefront/internal/middleware"
)

// DownloadService is the downloads surface the handler needs.
type DownloadService interface {
	Authorize(ctx context.Context, user *identity.User, productID uuid.UUID, clientIP string) (string, error)
	EmailLink(ctx context.Context, user *identity.User, productID uuid.UUID, productName string) error
}

// DownloadHandler serves purchased-file downloads.
type DownloadHandler struct {
	service DownloadService
	log     *slog.Logger
}

// NewDownloadHandler creates the handler. A nil logger discards output.
func NewDownloadHandler(service DownloadService, log *slog.Logger) *DownloadHandler {
	if service == nil {
		panic("download handler: service is required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DownloadHandler{service: service, log: log}
}

// Routes mounts the download endpoints on a chi router.
func (h *DownloadHandler) Routes(r chi.Router) {
	r.Get("/download/{productID}", h.Download)
	r.Post("/download/{productID}/email", h.Email)
}

// Download authorizes the request and redirects to a short-lived signed URL
// for the product file.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	url, err := h.service.Authorize(r.Context(), user, productID, clientIP(r))
	if err != nil {
		h.respondDownloadError(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

type emailLinkRequest struct {
	ProductName string `json:"product_name"`
}

// Email mints a signed URL for an owned product and mails it to the user.
func (h *DownloadHandler) Email(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req emailLinkRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ProductName == "" {
		req.ProductName = "your purchase"
	}

	if err := h.service.EmailLink(r.Context(), user, productID, req.ProductName); err != nil {
		h.respondDownloadError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *DownloadHandler) respondDownloadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, downloads.ErrNotOwned):
		respondError(w, http.StatusForbidden, "product not purchased")
	case errors.Is(err, downloads.ErrLinkExpired):
		respondError(w, http.StatusGone, "download link expired")
	case errors.Is(err, downloads.ErrLimitReached):
		respondError(w, http.StatusTooManyRequests, "download limit reached")
	case errors.Is(err, downloads.ErrFileUnavailable):
		respondError(w, http.StatusNotFound, "file unavailable")
	default:
		h.log.ErrorContext(r.Context(), "download authorization failed",
			logger.Component("handlers"), logger.Path(r.URL.Path), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "download unavailable")
	}
}

// clientIP extracts the caller address, preferring the first hop recorded by
// a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(ip)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
