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

// ReceivableDetail is a receivable joined with its customer name.
type ReceivableDetail struct {
	models.Receivable
	CustomerName *string `json:"customer_name,omitempty"`
}

// ReceivableRepository provides data access for accounts receivable.
type ReceivableRepository interface {
	Create(ctx context.Context, rec *models.Receivable) error
	GetByID(ctx context.Context, id int64) (*models.Receivable, error)
	// GetBySaleID returns the receivable linked to a sale, or ErrNotFound.
	GetBySaleID(ctx context.Context, saleID int64) (*models.Receivable, error)
	List(ctx context.Context) ([]*ReceivableDetail, error)
	Update(ctx context.Context, rec *models.Receivable) error
	Delete(ctx context.Context, id int64) error
	DeleteBySaleID(ctx context.Context, saleID int64) error
}

type receivableRepository struct {
	db *database.DB
}

// NewReceivableRepository creates a new ReceivableRepository.
func NewReceivableRepository(db *database.DB) ReceivableRepository {
	return &receivableRepository{db: db}
}

var _ ReceivableRepository = (*receivableRepository)(nil)

const receivableColumns = `id, sale_id, customer_id, description, amount, issue_date, due_date, received_date, status`

func (r *receivableRepository) Create(ctx context.Context, rec *models.Receivable) error {
	query := `
		INSERT INTO receivables (sale_id, customer_id, description, amount, due_date, received_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, issue_date`

	err := r.db.QueryRow(ctx, query,
		rec.SaleID, rec.CustomerID, rec.Description, rec.Amount,
		rec.DueDate, rec.ReceivedDate, rec.Status,
	).Scan(&rec.ID, &rec.IssueDate)
	if err != nil {
		return fmt.Errorf("failed to create receivable: %w", err)
	}
	return nil
}

func (r *receivableRepository) GetByID(ctx context.Context, id int64) (*models.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *receivableRepository) GetBySaleID(ctx context.Context, saleID int64) (*models.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE sale_id = $1`
	return r.getOne(ctx, query, saleID)
}

func (r *receivableRepository) getOne(ctx context.Context, query string, arg any) (*models.Receivable, error) {
	var rec models.Receivable
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&rec.ID, &rec.SaleID, &rec.CustomerID, &rec.Description, &rec.Amount,
		&rec.IssueDate, &rec.DueDate, &rec.ReceivedDate, &rec.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receivable: %w", err)
	}
	return &rec, nil
}

func (r *receivableRepository) List(ctx context.Context) ([]*ReceivableDetail, error) {
	query := `
		SELECT r.id, r.sale_id, r.customer_id, r.description, r.amount,
		       r.issue_date, r.due_date, r.received_date, r.status, c.name
		FROM receivables r
		LEFT JOIN customers c ON c.id = r.customer_id
		ORDER BY r.due_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	defer rows.Close()

	receivables := make([]*ReceivableDetail, 0)
	for rows.Next() {
		var rec ReceivableDetail
		err := rows.Scan(
			&rec.ID, &rec.SaleID, &rec.CustomerID, &rec.Description, &rec.Amount,
			&rec.IssueDate, &rec.DueDate, &rec.ReceivedDate, &rec.Status,
			&rec.CustomerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receivable: %w", err)
		}
		receivables = append(receivables, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receivables: %w", err)
	}
	return receivables, nil
}

func (r *receivableRepository) Update(ctx context.Context, rec *models.Receivable) error {
	query := `
		UPDATE receivables
		SET sale_id = $2, customer_id = $3, description = $4, amount = $5,
		    due_date = $6, received_date = $7, status = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		rec.ID, rec.SaleID, rec.CustomerID, rec.Description, rec.Amount,
		rec.DueDate, rec.ReceivedDate, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update receivable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *receivableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM receivables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receivable: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *receivableRepository) DeleteBySaleID(ctx context.Context, saleID int64) error {
	// No-op when the sale never produced a receivable.
	_, err := r.db.Exec(ctx, `DELETE FROM receivables WHERE sale_id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("failed to delete receivable for sale: %w", err)
	}
	return nil
}
