package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidtrack/vidtrack/internal/service"
	"github.com/vidtrack/vidtrack/internal/utm"
)

// RedirectHandler serves the tracked redirect path.
type RedirectHandler struct {
	svc    *service.LedgerService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.LedgerService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		svc:    svc,
		logger: logger.With("handler", "redirect"),
	}
}

// Redirect handles GET /go/{slug}. It resolves the link, records the
// click, and sends the visitor to the destination with UTM tags. The
// click ID rides along as utm_term so the scheduling webhook can join
// the booking back to this exact click.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
		return
	}

	link, cacheHit, err := h.svc.ResolveRedirect(r.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
			return
		}
		h.logger.Error("redirect_resolve_failed", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	params := utm.DefaultParams(slug)

	// Click logging must never take the redirect down with it. A lost
	// click degrades attribution, not the visitor experience.
	click, err := h.svc.RecordClick(r.Context(), service.ClickInput{
		Slug:      slug,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		h.logger.Warn("click_record_failed", "slug", slug, "error", err)
	} else {
		params[utm.KeyTerm] = click.ID
	}

	destination, err := utm.Inject(link.DestinationURL, params)
	if err != nil {
		h.logger.Warn("utm_inject_failed", "slug", slug, "error", err)
		destination = link.DestinationURL
	}

	h.logger.Info("redirect",
		"slug", slug,
		"cache_hit", cacheHit,
		"destination", destination,
	)

	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.Redirect(w, r, destination, http.StatusFound)
}

// clientIP extracts the real client IP, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
