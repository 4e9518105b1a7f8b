package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quartermasters/nudge-engine/pkg/services"
)

// DashboardHandler handles merchant dashboard HTTP requests.
type DashboardHandler struct {
	dashboard services.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/{storeId}", h.Dashboard)
	mux.HandleFunc("GET /api/analytics/{storeId}", h.Analytics)
}

// Dashboard handles GET /api/dashboard/{storeId}
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")

	snapshot, err := h.dashboard.Snapshot(r.Context(), storeID)
	if err != nil {
		h.logger.Error("Failed to load dashboard",
			zap.String("store_id", storeID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch dashboard data"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Analytics handles GET /api/analytics/{storeId}?from=&to=
// from/to are RFC 3339 or date-only values; the range applies only when both
// parse successfully.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeId")
	from := parseTimeParam(r.URL.Query().Get("from"))
	to := parseTimeParam(r.URL.Query().Get("to"))

	rows, err := h.dashboard.AnalyticsRange(r.Context(), storeID, from, to)
	if err != nil {
		h.logger.Error("Failed to load analytics",
			zap.String("store_id", storeID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch analytics"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, rows); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func parseTimeParam(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
