package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/services"
)

// FinanceHandler handles accounts receivable and payable, including the
// settle transitions.
type FinanceHandler struct {
	finance services.FinanceService
	logger  *zap.Logger
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(finance services.FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{finance: finance, logger: logger}
}

// RegisterRoutes registers the finance routes on the given mux.
func (h *FinanceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/receivables", h.ListReceivables)
	mux.HandleFunc("POST /api/receivables", h.CreateReceivable)
	mux.HandleFunc("PUT /api/receivables/{id}", h.UpdateReceivable)
	mux.HandleFunc("DELETE /api/receivables/{id}", h.DeleteReceivable)
	mux.HandleFunc("POST /api/receivables/{id}/receive", h.MarkReceived)

	mux.HandleFunc("GET /api/payables", h.ListPayables)
	mux.HandleFunc("POST /api/payables", h.CreatePayable)
	mux.HandleFunc("PUT /api/payables/{id}", h.UpdatePayable)
	mux.HandleFunc("DELETE /api/payables/{id}", h.DeletePayable)
	mux.HandleFunc("POST /api/payables/{id}/pay", h.MarkPaid)
}

type accountRequest struct {
	CustomerID  *int64          `json:"customer_id"`
	SupplierID  *int64          `json:"supplier_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
}

func (r *accountRequest) dueDate() (time.Time, string, bool) {
	raw := strings.TrimSpace(r.DueDate)
	if raw == "" {
		return time.Time{}, "due_date é obrigatório.", false
	}
	due, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, "due_date deve estar no formato AAAA-MM-DD.", false
	}
	return due, "", true
}

func (r *accountRequest) toReceivable() (*services.ReceivableInput, string, bool) {
	due, msg, ok := r.dueDate()
	if !ok {
		return nil, msg, false
	}
	return &services.ReceivableInput{
		CustomerID:  r.CustomerID,
		Description: r.Description,
		Amount:      r.Amount,
		DueDate:     due,
		Status:      r.Status,
	}, "", true
}

func (r *accountRequest) toPayable() (*services.PayableInput, string, bool) {
	due, msg, ok := r.dueDate()
	if !ok {
		return nil, msg, false
	}
	return &services.PayableInput{
		SupplierID:  r.SupplierID,
		Description: r.Description,
		Amount:      r.Amount,
		DueDate:     due,
		Status:      r.Status,
	}, "", true
}

func (h *FinanceHandler) writeError(w http.ResponseWriter, err error) {
	if werr := writeServiceError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}

func (h *FinanceHandler) writeData(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *FinanceHandler) badRequest(w http.ResponseWriter, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *FinanceHandler) requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(r)
	if !ok {
		h.badRequest(w, "invalid_id", "ID inválido.")
	}
	return id, ok
}

// --- receivables ---

// ListReceivables handles GET /api/receivables
func (h *FinanceHandler) ListReceivables(w http.ResponseWriter, r *http.Request) {
	receivables, err := h.finance.ListReceivables(r.Context())
	if err != nil {
		h.logger.Error("Failed to list receivables", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, receivables)
}

// CreateReceivable handles POST /api/receivables
func (h *FinanceHandler) CreateReceivable(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toReceivable()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	receivable, err := h.finance.CreateReceivable(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, receivable)
}

// UpdateReceivable handles PUT /api/receivables/{id}
func (h *FinanceHandler) UpdateReceivable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toReceivable()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	receivable, err := h.finance.UpdateReceivable(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, receivable)
}

// DeleteReceivable handles DELETE /api/receivables/{id}
func (h *FinanceHandler) DeleteReceivable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.finance.DeleteReceivable(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}

// MarkReceived handles POST /api/receivables/{id}/receive
func (h *FinanceHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	receivable, err := h.finance.MarkReceived(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, receivable)
}

// --- payables ---

// ListPayables handles GET /api/payables
func (h *FinanceHandler) ListPayables(w http.ResponseWriter, r *http.Request) {
	payables, err := h.finance.ListPayables(r.Context())
	if err != nil {
		h.logger.Error("Failed to list payables", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, payables)
}

// CreatePayable handles POST /api/payables
func (h *FinanceHandler) CreatePayable(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toPayable()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	payable, err := h.finance.CreatePayable(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, payable)
}

// UpdatePayable handles PUT /api/payables/{id}
func (h *FinanceHandler) UpdatePayable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toPayable()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	payable, err := h.finance.UpdatePayable(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, payable)
}

// DeletePayable handles DELETE /api/payables/{id}
func (h *FinanceHandler) DeletePayable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.finance.DeletePayable(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}

// MarkPaid handles POST /api/payables/{id}/pay
func (h *FinanceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	payable, err := h.finance.MarkPaid(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, payable)
}
