package snapshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// Builder assembles the snapshot table from the stores. Read-only: it
// never mutates business records, and any store error fails the build.
type Builder struct {
	sales       repositories.SaleRepository
	receivables repositories.ReceivableRepository
	payables    repositories.PayableRepository
	products    repositories.ProductRepository
	logger      *zap.Logger
}

// NewBuilder creates a snapshot builder over the given stores.
func NewBuilder(
	sales repositories.SaleRepository,
	receivables repositories.ReceivableRepository,
	payables repositories.PayableRepository,
	products repositories.ProductRepository,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		sales:       sales,
		receivables: receivables,
		payables:    payables,
		products:    products,
		logger:      logger.Named("snapshot"),
	}
}

// Build reads every record kind and flattens them onto the uniform
// column set. Sales come first, then receivables (joined to their
// originating sale), payables, and products.
func (b *Builder) Build(ctx context.Context) (*Table, error) {
	sales, err := b.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	receivables, err := b.receivables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}

	payables, err := b.payables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}

	products, err := b.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	salesByID := make(map[int64]*repositories.SaleDetail, len(sales))
	records := make([]Record, 0, len(sales)+len(receivables)+len(payables)+len(products))

	for _, s := range sales {
		salesByID[s.ID] = s
		records = append(records, SaleRecord{
			ID:            s.ID,
			ProductName:   s.ProductName,
			CustomerName:  s.CustomerName,
			Quantity:      s.Quantity,
			Total:         s.TotalValue,
			Date:          s.SaleDate,
			Status:        s.Status,
			PaymentMethod: s.PaymentMethod,
			Term:          s.PaymentTerm,
		})
	}

	for _, r := range receivables {
		rec := ReceivableRecord{
			ID:           r.ID,
			CustomerName: r.CustomerName,
			Amount:       r.Amount,
			Status:       r.Status,
			DueDate:      r.DueDate,
			ReceivedDate: r.ReceivedDate,
		}
		if r.SaleID != nil {
			if s, ok := salesByID[*r.SaleID]; ok {
				qty := s.Quantity
				total := s.TotalValue
				date := s.SaleDate
				status := s.Status
				method := s.PaymentMethod
				rec.SaleProductName = &s.ProductName
				rec.SaleQuantity = &qty
				rec.SaleTotal = &total
				rec.SaleDate = &date
				rec.SaleStatus = &status
				rec.SalePaymentMethod = &method
				rec.SaleTerm = s.PaymentTerm
				if rec.CustomerName == nil {
					rec.CustomerName = s.CustomerName
				}
			}
		}
		records = append(records, rec)
	}

	for _, p := range payables {
		records = append(records, PayableRecord{
			ID:           p.ID,
			SupplierName: p.SupplierName,
			Amount:       p.Amount,
			Status:       p.Status,
			DueDate:      p.DueDate,
			PaidDate:     p.PaidDate,
		})
	}

	for _, p := range products {
		records = append(records, ProductRecord{
			ID:            p.ID,
			Name:          p.Name,
			CategoryName:  p.CategoryName,
			SupplierName:  p.SupplierName,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			StockQuantity: p.StockQuantity,
		})
	}

	table := NewTable(records)
	b.logger.Debug("snapshot built",
		zap.Int("sales", len(sales)),
		zap.Int("receivables", len(receivables)),
		zap.Int("payables", len(payables)),
		zap.Int("products", len(products)))
	return table, nil
}
