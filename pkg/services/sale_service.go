// Package services holds the business flows: sales with stock and
// receivable side effects, finance account transitions, the dashboard
// summary, and the conversational analyst pipeline.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// SaleInput carries the writable sale fields.
type SaleInput struct {
	ProductID     int64      `json:"product_id"`
	CustomerID    *int64     `json:"customer_id,omitempty"`
	Quantity      int        `json:"quantity"`
	SaleDate      *time.Time `json:"sale_date,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"payment_method"`
	PaymentTerm   *string    `json:"payment_term,omitempty"`
}

// SaleService owns the sale lifecycle: totals, stock movements, and the
// linked receivable.
type SaleService interface {
	Create(ctx context.Context, input *SaleInput) (*models.Sale, error)
	Get(ctx context.Context, id int64) (*models.Sale, error)
	List(ctx context.Context) ([]*repositories.SaleDetail, error)
	Update(ctx context.Context, id int64, input *SaleInput) (*models.Sale, error)
	Delete(ctx context.Context, id int64) error
}

type saleService struct {
	sales       repositories.SaleRepository
	products    repositories.ProductRepository
	receivables repositories.ReceivableRepository
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService.
func NewSaleService(
	sales repositories.SaleRepository,
	products repositories.ProductRepository,
	receivables repositories.ReceivableRepository,
	logger *zap.Logger,
) SaleService {
	return &saleService{
		sales:       sales,
		products:    products,
		receivables: receivables,
		logger:      logger.Named("sales"),
	}
}

var _ SaleService = (*saleService)(nil)

func (s *saleService) Create(ctx context.Context, input *SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	sale := &models.Sale{
		ProductID:     input.ProductID,
		CustomerID:    input.CustomerID,
		Quantity:      input.Quantity,
		TotalValue:    product.SalePrice.Mul(decimalFromInt(input.Quantity)),
		SaleDate:      saleDateOrNow(input.SaleDate),
		Status:        input.Status,
		PaymentMethod: input.PaymentMethod,
		PaymentTerm:   input.PaymentTerm,
	}

	if err := s.products.AdjustStock(ctx, input.ProductID, -input.Quantity); err != nil {
		return nil, err
	}

	if err := s.sales.Create(ctx, sale); err != nil {
		// Put the units back so a failed insert does not leak stock.
		if restoreErr := s.products.AdjustStock(ctx, input.ProductID, input.Quantity); restoreErr != nil {
			s.logger.Error("stock restore after failed sale insert",
				zap.Int64("product_id", input.ProductID), zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	if err := s.syncReceivable(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("status", sale.Status))
	return sale, nil
}

func (s *saleService) Get(ctx context.Context, id int64) (*models.Sale, error) {
	return s.sales.GetByID(ctx, id)
}

func (s *saleService) List(ctx context.Context) ([]*repositories.SaleDetail, error) {
	return s.sales.List(ctx)
}

func (s *saleService) Update(ctx context.Context, id int64, input *SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(input); err != nil {
		return nil, err
	}

	old, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	// Stock moves by the difference; switching products restores the
	// old product entirely and charges the new one.
	if old.ProductID != input.ProductID {
		if err := s.products.AdjustStock(ctx, input.ProductID, -input.Quantity); err != nil {
			return nil, err
		}
		if err := s.products.AdjustStock(ctx, old.ProductID, old.Quantity); err != nil {
			s.logger.Error("stock restore on product switch",
				zap.Int64("product_id", old.ProductID), zap.Error(err))
		}
	} else if delta := input.Quantity - old.Quantity; delta != 0 {
		if err := s.products.AdjustStock(ctx, input.ProductID, -delta); err != nil {
			return nil, err
		}
	}

	sale := &models.Sale{
		ID:            id,
		ProductID:     input.ProductID,
		CustomerID:    input.CustomerID,
		Quantity:      input.Quantity,
		TotalValue:    product.SalePrice.Mul(decimalFromInt(input.Quantity)),
		SaleDate:      saleDateOrNow(input.SaleDate),
		Status:        input.Status,
		PaymentMethod: input.PaymentMethod,
		PaymentTerm:   input.PaymentTerm,
	}
	if input.SaleDate == nil {
		sale.SaleDate = old.SaleDate
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}

	if err := s.syncReceivable(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id), zap.String("status", sale.Status))
	return sale, nil
}

func (s *saleService) Delete(ctx context.Context, id int64) error {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.receivables.DeleteBySaleID(ctx, id); err != nil {
		return fmt.Errorf("delete linked receivable: %w", err)
	}

	if err := s.products.AdjustStock(ctx, sale.ProductID, sale.Quantity); err != nil {
		s.logger.Error("stock restore on sale delete",
			zap.Int64("product_id", sale.ProductID), zap.Error(err))
	}

	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// syncReceivable keeps the linked receivable in step with the sale.
// Completing a sale creates or refreshes the receivable (keyed by sale,
// so repeating the edit is idempotent); moving back to pending removes
// it. A refresh rewrites amount, customer, due date and settlement from
// the current sale state, since the total or payment terms may have
// changed with the edit.
func (s *saleService) syncReceivable(ctx context.Context, sale *models.Sale) error {
	if sale.Status != models.SaleStatusCompleted {
		if err := s.receivables.DeleteBySaleID(ctx, sale.ID); err != nil {
			return fmt.Errorf("remove receivable: %w", err)
		}
		return nil
	}

	today := localToday()

	rec, err := s.receivables.GetBySaleID(ctx, sale.ID)
	if err == nil {
		rec.CustomerID = sale.CustomerID
		rec.Amount = sale.TotalValue
		rec.DueDate = today.AddDate(0, 0, models.TermDays(sale.PaymentTerm))
		applySettlement(rec, sale.PaymentMethod, today)
		if err := s.receivables.Update(ctx, rec); err != nil {
			return fmt.Errorf("refresh receivable: %w", err)
		}
		s.logger.Info("receivable refreshed for sale",
			zap.Int64("sale_id", sale.ID),
			zap.String("status", rec.Status))
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("lookup receivable: %w", err)
	}

	saleID := sale.ID
	rec = &models.Receivable{
		SaleID:      &saleID,
		CustomerID:  sale.CustomerID,
		Description: fmt.Sprintf("Venda #%d", sale.ID),
		Amount:      sale.TotalValue,
		IssueDate:   today,
		DueDate:     today.AddDate(0, 0, models.TermDays(sale.PaymentTerm)),
	}
	applySettlement(rec, sale.PaymentMethod, today)

	if err := s.receivables.Create(ctx, rec); err != nil {
		return fmt.Errorf("create receivable: %w", err)
	}
	s.logger.Info("receivable created for sale",
		zap.Int64("sale_id", sale.ID),
		zap.String("status", rec.Status))
	return nil
}

// applySettlement sets the receivable's status from the payment method:
// cash sales are received on the spot, term sales stay open.
func applySettlement(rec *models.Receivable, paymentMethod string, today time.Time) {
	if paymentMethod == models.PaymentCash {
		received := today
		rec.Status = models.ReceivableStatusReceived
		rec.ReceivedDate = &received
		return
	}
	rec.Status = models.ReceivableStatusOpen
	rec.ReceivedDate = nil
}

// localToday is midnight of the current day in the server's location.
// Truncating the instant would pin the day boundary to UTC instead.
func localToday() time.Time {
	now := time.Now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

func validateSaleInput(input *SaleInput) error {
	if input.ProductID <= 0 {
		return fmt.Errorf("%w: product_id is required", apperrors.ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", apperrors.ErrInvalidInput)
	}
	switch input.Status {
	case models.SaleStatusPending, models.SaleStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown sale status %q", apperrors.ErrInvalidInput, input.Status)
	}
	switch input.PaymentMethod {
	case models.PaymentCash:
		// Cash sales carry no term.
		input.PaymentTerm = nil
	case models.PaymentTerm:
		if input.PaymentTerm == nil {
			return fmt.Errorf("%w: payment term is required for AP sales", apperrors.ErrInvalidInput)
		}
		switch *input.PaymentTerm {
		case models.Term7Days, models.Term14Days, models.Term28Days:
		default:
			return fmt.Errorf("%w: unknown payment term %q", apperrors.ErrInvalidInput, *input.PaymentTerm)
		}
	default:
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrInvalidInput, input.PaymentMethod)
	}
	return nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func saleDateOrNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}
