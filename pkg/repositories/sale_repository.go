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

// SaleDetail is a sale joined with its product and customer names, the
// shape the snapshot builder and listing endpoints consume.
type SaleDetail struct {
	models.Sale
	ProductName  string  `json:"product_name"`
	CustomerName *string `json:"customer_name,omitempty"`
}

// SaleRepository provides data access for sales.
type SaleRepository interface {
	Create(ctx context.Context, s *models.Sale) error
	GetByID(ctx context.Context, id int64) (*models.Sale, error)
	List(ctx context.Context) ([]*SaleDetail, error)
	Update(ctx context.Context, s *models.Sale) error
	Delete(ctx context.Context, id int64) error
}

type saleRepository struct {
	db *database.DB
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db *database.DB) SaleRepository {
	return &saleRepository{db: db}
}

var _ SaleRepository = (*saleRepository)(nil)

func (r *saleRepository) Create(ctx context.Context, s *models.Sale) error {
	query := `
		INSERT INTO sales (product_id, customer_id, quantity, total_value, status, payment_method, payment_term)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, sale_date`

	err := r.db.QueryRow(ctx, query,
		s.ProductID, s.CustomerID, s.Quantity, s.TotalValue,
		s.Status, s.PaymentMethod, s.PaymentTerm,
	).Scan(&s.ID, &s.SaleDate)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

func (r *saleRepository) GetByID(ctx context.Context, id int64) (*models.Sale, error) {
	query := `
		SELECT id, product_id, customer_id, quantity, total_value, sale_date, status, payment_method, payment_term
		FROM sales
		WHERE id = $1`

	var s models.Sale
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ProductID, &s.CustomerID, &s.Quantity, &s.TotalValue,
		&s.SaleDate, &s.Status, &s.PaymentMethod, &s.PaymentTerm,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return &s, nil
}

func (r *saleRepository) List(ctx context.Context) ([]*SaleDetail, error) {
	query := `
		SELECT s.id, s.product_id, s.customer_id, s.quantity, s.total_value,
		       s.sale_date, s.status, s.payment_method, s.payment_term,
		       p.name, c.name
		FROM sales s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.sale_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]*SaleDetail, 0)
	for rows.Next() {
		var s SaleDetail
		err := rows.Scan(
			&s.ID, &s.ProductID, &s.CustomerID, &s.Quantity, &s.TotalValue,
			&s.SaleDate, &s.Status, &s.PaymentMethod, &s.PaymentTerm,
			&s.ProductName, &s.CustomerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}
	return sales, nil
}

func (r *saleRepository) Update(ctx context.Context, s *models.Sale) error {
	query := `
		UPDATE sales
		SET product_id = $2, customer_id = $3, quantity = $4, total_value = $5,
		    status = $6, payment_method = $7, payment_term = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		s.ID, s.ProductID, s.CustomerID, s.Quantity, s.TotalValue,
		s.Status, s.PaymentMethod, s.PaymentTerm,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *saleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
