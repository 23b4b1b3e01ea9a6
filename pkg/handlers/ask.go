package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/services"
)

// AskHandler exposes the conversational analyst.
type AskHandler struct {
	analyst services.AnalystService
	logger  *zap.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(analyst services.AnalystService, logger *zap.Logger) *AskHandler {
	return &AskHandler{analyst: analyst, logger: logger}
}

// RegisterRoutes registers the analyst endpoint on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.Ask)
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Ask handles POST /api/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_body", "Corpo da requisição inválido."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.Question == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_question", "Por favor, faça uma pergunta."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.SessionID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_session_id", "session_id é obrigatório."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.analyst.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnavailable) {
			h.logger.Error("analyst collaborator unavailable", zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "collaborator_unavailable",
				"O serviço de análise está indisponível no momento. Tente novamente em instantes."); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("analyst request failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Erro interno."); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
