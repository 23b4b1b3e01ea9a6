package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/services"
)

// DashboardHandler serves the aggregated business summary.
type DashboardHandler struct {
	dashboard services.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// RegisterRoutes registers the dashboard routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", h.Summary)
}

// Summary handles GET /api/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", zap.Error(err))
		if werr := writeServiceError(w, err); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: summary}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
