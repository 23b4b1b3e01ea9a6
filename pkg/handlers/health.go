package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{version: version, logger: logger}
}

// RegisterRoutes registers the health endpoints on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Ping handles GET /ping
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
