package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// CatalogHandler handles the reference-data CRUD: categories, suppliers,
// customers and products. These are thin pass-throughs to the stores;
// business flows with side effects live in the services layer.
type CatalogHandler struct {
	categories repositories.CategoryRepository
	suppliers  repositories.SupplierRepository
	customers  repositories.CustomerRepository
	products   repositories.ProductRepository
	logger     *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(
	categories repositories.CategoryRepository,
	suppliers repositories.SupplierRepository,
	customers repositories.CustomerRepository,
	products repositories.ProductRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		categories: categories,
		suppliers:  suppliers,
		customers:  customers,
		products:   products,
		logger:     logger,
	}
}

// RegisterRoutes registers the catalog CRUD routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", h.GetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /api/suppliers", h.ListSuppliers)
	mux.HandleFunc("POST /api/suppliers", h.CreateSupplier)
	mux.HandleFunc("GET /api/suppliers/{id}", h.GetSupplier)
	mux.HandleFunc("PUT /api/suppliers/{id}", h.UpdateSupplier)
	mux.HandleFunc("DELETE /api/suppliers/{id}", h.DeleteSupplier)

	mux.HandleFunc("GET /api/customers", h.ListCustomers)
	mux.HandleFunc("POST /api/customers", h.CreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.GetCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.UpdateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", h.DeleteCustomer)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	if werr := writeServiceError(w, err); werr != nil {
		h.logger.Error("Failed to write error response", zap.Error(werr))
	}
}

func (h *CatalogHandler) writeData(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *CatalogHandler) badRequest(w http.ResponseWriter, code, message string) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *CatalogHandler) requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(r)
	if !ok {
		h.badRequest(w, "invalid_id", "ID inválido.")
	}
	return id, ok
}

// --- categories ---

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *categoryRequest) validate() (string, bool) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name é obrigatório.", false
	}
	return "", true
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.categories.Create(r.Context(), category); err != nil {
		h.logger.Error("Failed to create category", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, category)
}

// GetCategory handles GET /api/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, category)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	category := &models.Category{ID: id, Name: req.Name, Description: req.Description}
	if err := h.categories.Update(r.Context(), category); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}

// --- suppliers ---

type supplierRequest struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (r *supplierRequest) validate() (string, bool) {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	if r.CompanyName == "" {
		return "company_name é obrigatório.", false
	}
	return "", true
}

// ListSuppliers handles GET /api/suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.suppliers.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list suppliers", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, suppliers)
}

// CreateSupplier handles POST /api/suppliers
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	supplier := &models.Supplier{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
	}
	if err := h.suppliers.Create(r.Context(), supplier); err != nil {
		h.logger.Error("Failed to create supplier", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, supplier)
}

// GetSupplier handles GET /api/suppliers/{id}
func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, supplier)
}

// UpdateSupplier handles PUT /api/suppliers/{id}
func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	supplier := &models.Supplier{
		ID:          id,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
	}
	if err := h.suppliers.Update(r.Context(), supplier); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/suppliers/{id}
func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.suppliers.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}

// --- customers ---

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (r *customerRequest) validate() (string, bool) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name é obrigatório.", false
	}
	return "", true
}

// ListCustomers handles GET /api/customers
func (h *CatalogHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, customers)
}

// CreateCustomer handles POST /api/customers
func (h *CatalogHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	customer := &models.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := h.customers.Create(r.Context(), customer); err != nil {
		h.logger.Error("Failed to create customer", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, customer)
}

// GetCustomer handles GET /api/customers/{id}
func (h *CatalogHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, customer)
}

// UpdateCustomer handles PUT /api/customers/{id}
func (h *CatalogHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	customer := &models.Customer{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := h.customers.Update(r.Context(), customer); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/customers/{id}
func (h *CatalogHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}

// --- products ---

type productRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SupplierID    *int64          `json:"supplier_id"`
	CategoryID    *int64          `json:"category_id"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockQuantity int             `json:"stock_quantity"`
}

func (r *productRequest) validate() (string, bool) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name é obrigatório.", false
	}
	if r.PurchasePrice.IsNegative() || r.SalePrice.IsNegative() {
		return "preços não podem ser negativos.", false
	}
	if r.StockQuantity < 0 {
		return "stock_quantity não pode ser negativo.", false
	}
	return "", true
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, products)
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		SupplierID:    req.SupplierID,
		CategoryID:    req.CategoryID,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		StockQuantity: req.StockQuantity,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, product)
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid_body", "Corpo da requisição inválido.")
		return
	}
	if msg, ok := req.validate(); !ok {
		h.badRequest(w, "invalid_input", msg)
		return
	}
	product := &models.Product{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		SupplierID:    req.SupplierID,
		CategoryID:    req.CategoryID,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		StockQuantity: req.StockQuantity,
	}
	if err := h.products.Update(r.Context(), product); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, nil)
}
