package handler

import (
	"log/slog"
	"net/http"

	"github.com/vidtrack/vidtrack/internal/service"
)

// DashboardHandler serves the funnel dashboard endpoints.
type DashboardHandler struct {
	svc    *service.DashboardService
	seed   *service.SeedService
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.DashboardService, seed *service.SeedService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:    svc,
		seed:   seed,
		logger: logger.With("handler", "dashboard"),
	}
}

// Summary handles GET /api/v1/dashboard. With ?mock=true it returns a
// canned summary without touching the ledger, for frontend work
// against an empty database.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mock") == "true" {
		writeJSON(w, http.StatusOK, h.svc.MockSummary())
		return
	}

	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard_summary_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// SeedMockData handles POST /api/v1/dashboard/mock-data. It wipes the
// ledger and loads a small demo funnel. Admin scope only; the route
// guard enforces that.
func (h *DashboardHandler) SeedMockData(w http.ResponseWriter, r *http.Request) {
	if err := h.seed.Seed(r.Context()); err != nil {
		h.logger.Error("mock_data_seed_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("mock_data_seeded")

	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard_summary_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
