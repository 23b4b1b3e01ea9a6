// Package handlers exposes the HTTP surface: catalog and sales CRUD,
// finance transitions, the dashboard summary, and the analyst endpoint.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
)

// ApiResponse is the standard success envelope for CRUD endpoints.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps the error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", "Registro não encontrado.")
	case errors.Is(err, apperrors.ErrInvalidInput):
		return ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return ErrorResponse(w, http.StatusConflict, "insufficient_stock", "Estoque insuficiente para a quantidade pedida.")
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return ErrorResponse(w, http.StatusConflict, "invalid_status", "Transição de status inválida.")
	case errors.Is(err, apperrors.ErrConflict):
		return ErrorResponse(w, http.StatusConflict, "conflict", "Conflito com o estado atual do registro.")
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Erro interno.")
	}
}

// parseID extracts the {id} path value.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
