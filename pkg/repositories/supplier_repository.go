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

// SupplierRepository provides data access for suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *models.Supplier) error
	GetByID(ctx context.Context, id int64) (*models.Supplier, error)
	List(ctx context.Context) ([]*models.Supplier, error)
	Update(ctx context.Context, s *models.Supplier) error
	Delete(ctx context.Context, id int64) error
}

type supplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new SupplierRepository.
func NewSupplierRepository(db *database.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

var _ SupplierRepository = (*supplierRepository)(nil)

func (r *supplierRepository) Create(ctx context.Context, s *models.Supplier) error {
	query := `
		INSERT INTO suppliers (company_name, contact_name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, s.CompanyName, s.ContactName, s.Phone, s.Email).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

func (r *supplierRepository) GetByID(ctx context.Context, id int64) (*models.Supplier, error) {
	query := `SELECT id, company_name, contact_name, phone, email FROM suppliers WHERE id = $1`

	var s models.Supplier
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.Phone, &s.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return &s, nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*models.Supplier, error) {
	query := `SELECT id, company_name, contact_name, phone, email FROM suppliers ORDER BY company_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]*models.Supplier, 0)
	for rows.Next() {
		var s models.Supplier
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.ContactName, &s.Phone, &s.Email); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *supplierRepository) Update(ctx context.Context, s *models.Supplier) error {
	query := `
		UPDATE suppliers
		SET company_name = $2, contact_name = $3, phone = $4, email = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, s.ID, s.CompanyName, s.ContactName, s.Phone, s.Email)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
