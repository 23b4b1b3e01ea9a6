package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
	"github.com/balcao-digital/gestor-engine/pkg/services"
)

type stubAnalyst struct {
	result *services.AskResult
	err    error

	sessionID string
	question  string
}

func (s *stubAnalyst) Ask(_ context.Context, sessionID, question string) (*services.AskResult, error) {
	s.sessionID = sessionID
	s.question = question
	return s.result, s.err
}

var _ services.AnalystService = (*stubAnalyst)(nil)

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAskHandlerValidation(t *testing.T) {
	analyst := &stubAnalyst{}
	mux := http.NewServeMux()
	NewAskHandler(analyst, zap.NewNop()).RegisterRoutes(mux)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing question", `{"session_id": "s1"}`, "missing_question"},
		{"blank question", `{"question": "   ", "session_id": "s1"}`, "missing_question"},
		{"missing session", `{"question": "Quantas vendas?"}`, "missing_session_id"},
		{"bad body", `{"question":`, "invalid_body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/api/ask", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeBody(t, rec)["error"])
		})
	}
	assert.Empty(t, analyst.question, "invalid requests must not reach the service")
}

func TestAskHandlerSuccess(t *testing.T) {
	analyst := &stubAnalyst{result: &services.AskResult{
		Answer:          "Você teve 3 vendas concluídas.",
		DadosAnalisados: map[string]any{"resultado": "3"},
	}}
	mux := http.NewServeMux()
	NewAskHandler(analyst, zap.NewNop()).RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodPost, "/api/ask", `{"question": "Quantas vendas?", "session_id": "s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Você teve 3 vendas concluídas.", body["answer"])
	assert.Equal(t, "s1", analyst.sessionID)
	assert.Equal(t, "Quantas vendas?", analyst.question)
}

func TestAskHandlerUnavailable(t *testing.T) {
	analyst := &stubAnalyst{err: fmt.Errorf("generate: %w", apperrors.ErrUnavailable)}
	mux := http.NewServeMux()
	NewAskHandler(analyst, zap.NewNop()).RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodPost, "/api/ask", `{"question": "Quantas vendas?", "session_id": "s1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "collaborator_unavailable", decodeBody(t, rec)["error"])
}

// fakeCategoryRepo backs the catalog handler tests in memory.
type fakeCategoryRepo struct {
	nextID int64
	items  map[int64]*models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{nextID: 1, items: make(map[int64]*models.Category)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	c.ID = f.nextID
	f.nextID++
	f.items[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *models.Category) error {
	if _, ok := f.items[c.ID]; !ok {
		return apperrors.ErrNotFound
	}
	f.items[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

var _ repositories.CategoryRepository = (*fakeCategoryRepo)(nil)

func newCategoryMux(repo repositories.CategoryRepository) *http.ServeMux {
	mux := http.NewServeMux()
	NewCatalogHandler(repo, nil, nil, nil, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestCategoryCRUD(t *testing.T) {
	repo := newFakeCategoryRepo()
	mux := newCategoryMux(repo)

	rec := doJSON(t, mux, http.MethodPost, "/api/categories", `{"name": "Papelaria", "description": "Material de escritório"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	created := body["data"].(map[string]any)
	assert.Equal(t, "Papelaria", created["name"])

	rec = doJSON(t, mux, http.MethodGet, "/api/categories/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPut, "/api/categories/1", `{"name": "Escritório"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Escritório", repo.items[1].Name)

	rec = doJSON(t, mux, http.MethodDelete, "/api/categories/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.items)
}

func TestCategoryValidation(t *testing.T) {
	mux := newCategoryMux(newFakeCategoryRepo())

	rec := doJSON(t, mux, http.MethodPost, "/api/categories", `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["error"])

	rec = doJSON(t, mux, http.MethodGet, "/api/categories/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decodeBody(t, rec)["error"])

	rec = doJSON(t, mux, http.MethodGet, "/api/categories/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])
}

type stubSaleService struct {
	createErr error
	sale      *models.Sale
}

func (s *stubSaleService) Create(_ context.Context, _ *services.SaleInput) (*models.Sale, error) {
	return s.sale, s.createErr
}
func (s *stubSaleService) Get(_ context.Context, _ int64) (*models.Sale, error) {
	return s.sale, s.createErr
}
func (s *stubSaleService) List(_ context.Context) ([]*repositories.SaleDetail, error) {
	return nil, nil
}
func (s *stubSaleService) Update(_ context.Context, _ int64, _ *services.SaleInput) (*models.Sale, error) {
	return s.sale, s.createErr
}
func (s *stubSaleService) Delete(_ context.Context, _ int64) error { return s.createErr }

var _ services.SaleService = (*stubSaleService)(nil)

func TestSalesHandlerErrors(t *testing.T) {
	svc := &stubSaleService{createErr: fmt.Errorf("adjust stock: %w", apperrors.ErrInsufficientStock)}
	mux := http.NewServeMux()
	NewSalesHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodPost, "/api/sales",
		`{"product_id": 1, "quantity": 50, "status": "CONCLUIDA", "payment_method": "AV"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", decodeBody(t, rec)["error"])

	rec = doJSON(t, mux, http.MethodPost, "/api/sales",
		`{"product_id": 1, "quantity": 1, "sale_date": "12/03/2025", "status": "PENDENTE", "payment_method": "AP", "payment_term": "7D"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["error"])
}

type stubFinanceService struct {
	receivable *models.Receivable
	err        error
}

func (s *stubFinanceService) CreateReceivable(_ context.Context, _ *services.ReceivableInput) (*models.Receivable, error) {
	return s.receivable, s.err
}
func (s *stubFinanceService) ListReceivables(_ context.Context) ([]*repositories.ReceivableDetail, error) {
	return nil, nil
}
func (s *stubFinanceService) UpdateReceivable(_ context.Context, _ int64, _ *services.ReceivableInput) (*models.Receivable, error) {
	return s.receivable, s.err
}
func (s *stubFinanceService) DeleteReceivable(_ context.Context, _ int64) error { return s.err }
func (s *stubFinanceService) MarkReceived(_ context.Context, _ int64) (*models.Receivable, error) {
	return s.receivable, s.err
}
func (s *stubFinanceService) CreatePayable(_ context.Context, _ *services.PayableInput) (*models.Payable, error) {
	return nil, s.err
}
func (s *stubFinanceService) ListPayables(_ context.Context) ([]*repositories.PayableDetail, error) {
	return nil, nil
}
func (s *stubFinanceService) UpdatePayable(_ context.Context, _ int64, _ *services.PayableInput) (*models.Payable, error) {
	return nil, s.err
}
func (s *stubFinanceService) DeletePayable(_ context.Context, _ int64) error { return s.err }
func (s *stubFinanceService) MarkPaid(_ context.Context, _ int64) (*models.Payable, error) {
	return nil, s.err
}

var _ services.FinanceService = (*stubFinanceService)(nil)

func TestFinanceHandler(t *testing.T) {
	svc := &stubFinanceService{}
	mux := http.NewServeMux()
	NewFinanceHandler(svc, zap.NewNop()).RegisterRoutes(mux)

	// due_date is required and must be ISO.
	rec := doJSON(t, mux, http.MethodPost, "/api/receivables", `{"description": "Adiantamento", "amount": "50.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/receivables", `{"description": "Adiantamento", "amount": "50.00", "due_date": "15/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.receivable = &models.Receivable{ID: 1, Description: "Adiantamento", Amount: decimal.NewFromInt(50)}
	rec = doJSON(t, mux, http.MethodPost, "/api/receivables", `{"description": "Adiantamento", "amount": "50.00", "due_date": "2025-03-15"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	// Settling an already-settled account maps to 409.
	svc.err = fmt.Errorf("receivable 1: %w", apperrors.ErrInvalidStatus)
	rec = doJSON(t, mux, http.MethodPost, "/api/receivables/1/receive", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_status", decodeBody(t, rec)["error"])
}

func TestHealthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler("1.2.3", zap.NewNop()).RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "1.2.3", body["version"])

	rec = doJSON(t, mux, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
