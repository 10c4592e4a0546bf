package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/vidtrack/vidtrack/internal/auth"
	"github.com/vidtrack/vidtrack/internal/model"
	"github.com/vidtrack/vidtrack/internal/repository"
)

// APIKeyHandler serves API key management endpoints.
type APIKeyHandler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(repo *repository.Repository, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		repo:   repo,
		logger: logger.With("handler", "apikey"),
	}
}

// Create handles POST /api/v1/api-keys. The plaintext key appears in
// this response only; after that only the prefix is recoverable.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.APIKeyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if len(req.Scopes) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_SCOPES", "At least one scope is required")
		return
	}
	for _, scope := range req.Scopes {
		if !slices.Contains(model.ValidScopes, scope) {
			writeError(w, http.StatusBadRequest, "INVALID_SCOPE", "Unknown scope: "+scope)
			return
		}
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		h.logger.Error("key_generation_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	key := &model.APIKey{
		ID:        ulid.Make().String(),
		KeyHash:   generated.Hash,
		KeyPrefix: generated.Prefix,
		Scopes:    req.Scopes,
		Name:      req.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.CreateAPIKey(r.Context(), key); err != nil {
		h.logger.Error("key_create_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("api_key_created", "key_id", key.ID, "prefix", key.KeyPrefix, "scopes", key.Scopes)

	writeJSON(w, http.StatusCreated, model.APIKeyCreateResponse{
		APIKeyResponse: key.ToResponse(),
		Key:            generated.Plaintext,
	})
}

// List handles GET /api/v1/api-keys.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.repo.ListAPIKeys(r.Context())
	if err != nil {
		h.logger.Error("key_list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	responses := make([]model.APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		responses = append(responses, key.ToResponse())
	}

	writeJSON(w, http.StatusOK, map[string]any{"api_keys": responses})
}

// Revoke handles DELETE /api/v1/api-keys/{keyID}. Revocation is
// idempotent in effect but unknown IDs still 404 so callers cannot
// probe for valid ones.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "keyID")

	if err := h.repo.RevokeAPIKey(r.Context(), keyID); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			writeError(w, http.StatusNotFound, "KEY_NOT_FOUND", "API key not found")
			return
		}
		h.logger.Error("key_revoke_failed", "key_id", keyID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("api_key_revoked", "key_id", keyID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}
