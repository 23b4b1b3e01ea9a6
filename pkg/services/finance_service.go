package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// ReceivableInput carries the writable fields of a manual receivable.
// Sale-linked receivables are managed by the sale flow, never here.
type ReceivableInput struct {
	CustomerID  *int64          `json:"customer_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      string          `json:"status,omitempty"`
}

// PayableInput carries the writable fields of a payable.
type PayableInput struct {
	SupplierID  *int64          `json:"supplier_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Status      string          `json:"status,omitempty"`
}

// FinanceService owns accounts receivable and payable: CRUD plus the
// settle transitions.
type FinanceService interface {
	CreateReceivable(ctx context.Context, input *ReceivableInput) (*models.Receivable, error)
	ListReceivables(ctx context.Context) ([]*repositories.ReceivableDetail, error)
	UpdateReceivable(ctx context.Context, id int64, input *ReceivableInput) (*models.Receivable, error)
	DeleteReceivable(ctx context.Context, id int64) error
	// MarkReceived settles an open receivable today. Already settled or
	// cancelled accounts fail with ErrInvalidStatus.
	MarkReceived(ctx context.Context, id int64) (*models.Receivable, error)

	CreatePayable(ctx context.Context, input *PayableInput) (*models.Payable, error)
	ListPayables(ctx context.Context) ([]*repositories.PayableDetail, error)
	UpdatePayable(ctx context.Context, id int64, input *PayableInput) (*models.Payable, error)
	DeletePayable(ctx context.Context, id int64) error
	// MarkPaid settles an open payable today, mirroring MarkReceived.
	MarkPaid(ctx context.Context, id int64) (*models.Payable, error)
}

type financeService struct {
	receivables repositories.ReceivableRepository
	payables    repositories.PayableRepository
	logger      *zap.Logger
}

// NewFinanceService creates a new FinanceService.
func NewFinanceService(
	receivables repositories.ReceivableRepository,
	payables repositories.PayableRepository,
	logger *zap.Logger,
) FinanceService {
	return &financeService{
		receivables: receivables,
		payables:    payables,
		logger:      logger.Named("finance"),
	}
}

var _ FinanceService = (*financeService)(nil)

func (s *financeService) CreateReceivable(ctx context.Context, input *ReceivableInput) (*models.Receivable, error) {
	status, err := validateAccountInput(input.Amount, input.DueDate, input.Status, receivableStatuses)
	if err != nil {
		return nil, err
	}
	rec := &models.Receivable{
		CustomerID:  input.CustomerID,
		Description: input.Description,
		Amount:      input.Amount,
		IssueDate:   time.Now(),
		DueDate:     input.DueDate,
		Status:      status,
	}
	if err := s.receivables.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("receivable created", zap.Int64("id", rec.ID))
	return rec, nil
}

func (s *financeService) ListReceivables(ctx context.Context) ([]*repositories.ReceivableDetail, error) {
	return s.receivables.List(ctx)
}

func (s *financeService) UpdateReceivable(ctx context.Context, id int64, input *ReceivableInput) (*models.Receivable, error) {
	status, err := validateAccountInput(input.Amount, input.DueDate, input.Status, receivableStatuses)
	if err != nil {
		return nil, err
	}
	rec, err := s.receivables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.CustomerID = input.CustomerID
	rec.Description = input.Description
	rec.Amount = input.Amount
	rec.DueDate = input.DueDate
	rec.Status = status
	if err := s.receivables.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *financeService) DeleteReceivable(ctx context.Context, id int64) error {
	return s.receivables.Delete(ctx, id)
}

func (s *financeService) MarkReceived(ctx context.Context, id int64) (*models.Receivable, error) {
	rec, err := s.receivables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsOpen() {
		return nil, fmt.Errorf("%w: receivable is %s", apperrors.ErrInvalidStatus, rec.Status)
	}
	today := time.Now()
	rec.Status = models.ReceivableStatusReceived
	rec.ReceivedDate = &today
	if err := s.receivables.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("receivable settled", zap.Int64("id", id))
	return rec, nil
}

func (s *financeService) CreatePayable(ctx context.Context, input *PayableInput) (*models.Payable, error) {
	status, err := validateAccountInput(input.Amount, input.DueDate, input.Status, payableStatuses)
	if err != nil {
		return nil, err
	}
	p := &models.Payable{
		SupplierID:  input.SupplierID,
		Description: input.Description,
		Amount:      input.Amount,
		IssueDate:   time.Now(),
		DueDate:     input.DueDate,
		Status:      status,
	}
	if err := s.payables.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payable created", zap.Int64("id", p.ID))
	return p, nil
}

func (s *financeService) ListPayables(ctx context.Context) ([]*repositories.PayableDetail, error) {
	return s.payables.List(ctx)
}

func (s *financeService) UpdatePayable(ctx context.Context, id int64, input *PayableInput) (*models.Payable, error) {
	status, err := validateAccountInput(input.Amount, input.DueDate, input.Status, payableStatuses)
	if err != nil {
		return nil, err
	}
	p, err := s.payables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SupplierID = input.SupplierID
	p.Description = input.Description
	p.Amount = input.Amount
	p.DueDate = input.DueDate
	p.Status = status
	if err := s.payables.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *financeService) DeletePayable(ctx context.Context, id int64) error {
	return s.payables.Delete(ctx, id)
}

func (s *financeService) MarkPaid(ctx context.Context, id int64) (*models.Payable, error) {
	p, err := s.payables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOpen() {
		return nil, fmt.Errorf("%w: payable is %s", apperrors.ErrInvalidStatus, p.Status)
	}
	today := time.Now()
	p.Status = models.PayableStatusPaid
	p.PaidDate = &today
	if err := s.payables.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payable settled", zap.Int64("id", id))
	return p, nil
}

var receivableStatuses = map[string]bool{
	models.ReceivableStatusOpen:      true,
	models.ReceivableStatusReceived:  true,
	models.ReceivableStatusOverdue:   true,
	models.ReceivableStatusCancelled: true,
}

var payableStatuses = map[string]bool{
	models.PayableStatusOpen:      true,
	models.PayableStatusPaid:      true,
	models.PayableStatusOverdue:   true,
	models.PayableStatusCancelled: true,
}

// validateAccountInput checks the shared receivable/payable fields and
// resolves the status, defaulting to ABERTO.
func validateAccountInput(amount decimal.Decimal, dueDate time.Time, status string, valid map[string]bool) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidInput)
	}
	if dueDate.IsZero() {
		return "", fmt.Errorf("%w: due_date is required", apperrors.ErrInvalidInput)
	}
	if status == "" {
		return models.ReceivableStatusOpen, nil
	}
	if !valid[status] {
		return "", fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, status)
	}
	return status, nil
}
