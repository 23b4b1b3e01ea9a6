package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/services"
)

const dateLayout = "2006-01-02"

// SalesHandler handles the sale lifecycle endpoints.
type SalesHandler struct {
	sales  services.SaleService
	logger *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(sales services.SaleService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{sales: sales, logger: logger}
}

// RegisterRoutes registers the sales routes on the given mux.
func (h *SalesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sales", h.List)
	mux.HandleFunc("POST /api/sales", h.Create)
	mux.HandleFunc("GET /api/sales/{id}", h.Get)
	mux.HandleFunc("PUT /api/sales/{id}", h.Update)
	mux.HandleFunc("DELETE /api/sales/{id}", h.Delete)
}

type saleRequest struct {
	ProductID     int64   `json:"product_id"`
	CustomerID    *int64  `json:"customer_id"`
	Quantity      int     `json:"quantity"`
	SaleDate      string  `json:"sale_date"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"payment_method"`
	PaymentTerm   *string `json:"payment_term"`
}

func (r *saleRequest) toInput() (*services.SaleInput, string, bool) {
	input := &services.SaleInput{
		ProductID:     r.ProductID,
		CustomerID:    r.CustomerID,
		Quantity:      r.Quantity,
		Status:        r.Status,
		PaymentMethod: r.PaymentMethod,
		PaymentTerm:   r.PaymentTerm,
	}
	if r.SaleDate != "" {
		date, err := time.Parse(dateLayout, r.SaleDate)
		if err != nil {
			return nil, "sale_date deve estar no formato AAAA-MM-DD.", false
		}
		input.SaleDate = &date
	}
	return input, "", true
}

func (h *SalesHandler) writeError(w http.ResponseWriter, err error) {
	if werr := writeServiceError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}

func (h *SalesHandler) writeData(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SalesHandler) badRequest(w http.ResponseWriter, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// List handles GET /api/sales
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, sales)
}

// Create handles POST /api/sales
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toInput()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	sale, err := h.sales.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, sale)
}

// Get handles GET /api/sales/{id}
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.badRequest(w, "invalid_id", "ID inválido.")
		return
	}
	sale, err := h.sales.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, sale)
}

// Update handles PUT /api/sales/{id}
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.badRequest(w, "invalid_id", "ID inválido.")
		return
	}
	var req saleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	input, msg, ok := req.toInput()
	if !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	sale, err := h.sales.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, sale)
}

// Delete handles DELETE /api/sales/{id}
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.badRequest(w, "invalid_id", "ID inválido.")
		return
	}
	if err := h.sales.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}
