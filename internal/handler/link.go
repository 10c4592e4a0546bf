package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidtrack/vidtrack/internal/handler/dto"
	"github.com/vidtrack/vidtrack/internal/service"
)

// LinkHandler serves the tracked-link management endpoints.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		svc:    svc,
		logger: logger.With("handler", "link"),
	}
}

// Create handles POST /api/v1/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	link, err := h.svc.CreateLink(r.Context(), service.CreateLinkInput{
		Slug:           req.Slug,
		Title:          req.Title,
		DestinationURL: req.DestinationURL,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link, h.svc.ShortURL(link.Slug)))
}

// Get handles GET /api/v1/links/{slug}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	link, err := h.svc.GetLink(r.Context(), slug)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.svc.ShortURL(link.Slug)))
}

// List handles GET /api/v1/links with page/per_page query parameters.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 50)

	links, err := h.svc.ListLinks(r.Context(), service.ListLinksInput{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := dto.ListLinksResponse{
		Links:   make([]dto.LinkResponse, 0, len(links)),
		Page:    page,
		PerPage: perPage,
	}
	for _, link := range links {
		resp.Links = append(resp.Links, dto.ToLinkResponse(link, h.svc.ShortURL(link.Slug)))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, service.ErrSlugExists):
		writeError(w, http.StatusConflict, "SLUG_TAKEN", "Slug already exists")
	case errors.Is(err, service.ErrInvalidSlug):
		writeError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid slug format")
	case errors.Is(err, service.ErrInvalidTitle):
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", "Invalid title")
	case errors.Is(err, service.ErrInvalidDestination):
		writeError(w, http.StatusBadRequest, "INVALID_DESTINATION", "Invalid destination URL")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
