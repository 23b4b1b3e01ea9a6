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

// CustomerRepository provides data access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, c *models.Customer) error
	Delete(ctx context.Context, id int64) error
}

type customerRepository struct {
	db *database.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *database.DB) CustomerRepository {
	return &customerRepository{db: db}
}

var _ CustomerRepository = (*customerRepository)(nil)

func (r *customerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (name, phone, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, c.Name, c.Phone, c.Email, c.Address).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT id, name, phone, email, address, created_at FROM customers WHERE id = $1`

	var c models.Customer
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT id, name, phone, email, address, created_at FROM customers ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, phone = $3, email = $4, address = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Phone, c.Email, c.Address)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
