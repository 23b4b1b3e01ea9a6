package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/database"
	"github.com/balcao-digital/gestor-engine/pkg/models"
)

// ProductDetail is a product row joined with its category and supplier names
// for listing and snapshot building.
type ProductDetail struct {
	models.Product
	CategoryName *string `json:"category_name,omitempty"`
	SupplierName *string `json:"supplier_name,omitempty"`
}

// ProductRepository provides data access for products.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]*ProductDetail, error)
	Update(ctx context.Context, p *models.Product) error
	// AdjustStock adds delta (may be negative) to a product's stock.
	// Fails with ErrInsufficientStock when the result would go negative.
	AdjustStock(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, supplier_id, category_id, purchase_price, sale_price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.SupplierID, p.CategoryID,
		p.PurchasePrice, p.SalePrice, p.StockQuantity,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT id, name, description, supplier_id, category_id, purchase_price, sale_price, stock_quantity, created_at
		FROM products
		WHERE id = $1`

	var p models.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.SupplierID, &p.CategoryID,
		&p.PurchasePrice, &p.SalePrice, &p.StockQuantity, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*ProductDetail, error) {
	query := `
		SELECT p.id, p.name, p.description, p.supplier_id, p.category_id,
		       p.purchase_price, p.sale_price, p.stock_quantity, p.created_at,
		       c.name, s.company_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		ORDER BY p.name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*ProductDetail, 0)
	for rows.Next() {
		var p ProductDetail
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.SupplierID, &p.CategoryID,
			&p.PurchasePrice, &p.SalePrice, &p.StockQuantity, &p.CreatedAt,
			&p.CategoryName, &p.SupplierName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, supplier_id = $4, category_id = $5,
		    purchase_price = $6, sale_price = $7, stock_quantity = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.SupplierID, p.CategoryID,
		p.PurchasePrice, p.SalePrice, p.StockQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	// The WHERE clause guards against negative stock so concurrent sales
	// cannot oversell.
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2
		WHERE id = $1 AND stock_quantity + $2 >= 0`

	tag, err := r.db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing product from insufficient stock.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.ErrInsufficientStock
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
