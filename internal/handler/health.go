package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vidtrack/vidtrack/internal/integration"
)

// Pinger is anything that can report its own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the operational status endpoints.
type HealthHandler struct {
	db        Pinger
	cache     Pinger
	providers *integration.HealthChecker
	logger    *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db, cache Pinger, providers *integration.HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		providers: providers,
		logger:    logger.With("handler", "health"),
	}
}

// Health handles GET /status/health. It reports overall readiness:
// 200 when both the database and cache respond, 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "component", "database", "error", err)
		checks["database"] = "error"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "component", "cache", "error", err)
		checks["cache"] = "error"
		healthy = false
	} else {
		checks["cache"] = "ok"
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}

// Database handles GET /status/database with a round-trip latency probe.
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		h.logger.Error("database check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"latency_ms": latency.Milliseconds(),
	})
}

// APIStatus handles GET /status/api-status. It probes each configured
// third-party provider and reports ok, error, or not_configured.
func (h *HealthHandler) APIStatus(w http.ResponseWriter, r *http.Request) {
	results := h.providers.CheckAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": results,
	})
}
