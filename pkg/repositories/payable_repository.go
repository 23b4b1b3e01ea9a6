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

// PayableDetail is a payable joined with its supplier name.
type PayableDetail struct {
	models.Payable
	SupplierName *string `json:"supplier_name,omitempty"`
}

// PayableRepository provides data access for accounts payable.
type PayableRepository interface {
	Create(ctx context.Context, p *models.Payable) error
	GetByID(ctx context.Context, id int64) (*models.Payable, error)
	List(ctx context.Context) ([]*PayableDetail, error)
	Update(ctx context.Context, p *models.Payable) error
	Delete(ctx context.Context, id int64) error
}

type payableRepository struct {
	db *database.DB
}

// NewPayableRepository creates a new PayableRepository.
func NewPayableRepository(db *database.DB) PayableRepository {
	return &payableRepository{db: db}
}

var _ PayableRepository = (*payableRepository)(nil)

func (r *payableRepository) Create(ctx context.Context, p *models.Payable) error {
	query := `
		INSERT INTO payables (supplier_id, description, amount, due_date, paid_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, issue_date`

	err := r.db.QueryRow(ctx, query,
		p.SupplierID, p.Description, p.Amount, p.DueDate, p.PaidDate, p.Status,
	).Scan(&p.ID, &p.IssueDate)
	if err != nil {
		return fmt.Errorf("failed to create payable: %w", err)
	}
	return nil
}

func (r *payableRepository) GetByID(ctx context.Context, id int64) (*models.Payable, error) {
	query := `
		SELECT id, supplier_id, description, amount, issue_date, due_date, paid_date, status
		FROM payables
		WHERE id = $1`

	var p models.Payable
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SupplierID, &p.Description, &p.Amount,
		&p.IssueDate, &p.DueDate, &p.PaidDate, &p.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payable: %w", err)
	}
	return &p, nil
}

func (r *payableRepository) List(ctx context.Context) ([]*PayableDetail, error) {
	query := `
		SELECT p.id, p.supplier_id, p.description, p.amount,
		       p.issue_date, p.due_date, p.paid_date, p.status, s.company_name
		FROM payables p
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		ORDER BY p.due_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	defer rows.Close()

	payables := make([]*PayableDetail, 0)
	for rows.Next() {
		var p PayableDetail
		err := rows.Scan(
			&p.ID, &p.SupplierID, &p.Description, &p.Amount,
			&p.IssueDate, &p.DueDate, &p.PaidDate, &p.Status,
			&p.SupplierName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payable: %w", err)
		}
		payables = append(payables, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payables: %w", err)
	}
	return payables, nil
}

func (r *payableRepository) Update(ctx context.Context, p *models.Payable) error {
	query := `
		UPDATE payables
		SET supplier_id = $2, description = $3, amount = $4,
		    due_date = $5, paid_date = $6, status = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.SupplierID, p.Description, p.Amount, p.DueDate, p.PaidDate, p.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update payable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *payableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
