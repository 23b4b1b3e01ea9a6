package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
)

// TopProduct is one entry of the best-sellers ranking.
type TopProduct struct {
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
}

// DashboardSummary is the home-screen aggregate view.
type DashboardSummary struct {
	TotalSales           int             `json:"total_sales"`
	PendingSales         int             `json:"pending_sales"`
	CompletedSales       int             `json:"completed_sales"`
	BilledRevenue        decimal.Decimal `json:"billed_revenue"`
	ReceivedRevenue      decimal.Decimal `json:"received_revenue"`
	OpenReceivablesValue decimal.Decimal `json:"open_receivables_value"`
	OpenReceivablesCount int             `json:"open_receivables_count"`
	OpenPayablesValue    decimal.Decimal `json:"open_payables_value"`
	OpenPayablesCount    int             `json:"open_payables_count"`
	TopProducts          []TopProduct    `json:"top_products"`
}

// topProductLimit bounds the best-sellers ranking.
const topProductLimit = 5

// DashboardService computes the summary on demand; nothing is cached.
type DashboardService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}

type dashboardService struct {
	sales       repositories.SaleRepository
	receivables repositories.ReceivableRepository
	payables    repositories.PayableRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	sales repositories.SaleRepository,
	receivables repositories.ReceivableRepository,
	payables repositories.PayableRepository,
) DashboardService {
	return &dashboardService{sales: sales, receivables: receivables, payables: payables}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	receivables, err := s.receivables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}
	payables, err := s.payables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}

	summary := &DashboardSummary{
		TotalSales:           len(sales),
		BilledRevenue:        decimal.Zero,
		ReceivedRevenue:      decimal.Zero,
		OpenReceivablesValue: decimal.Zero,
		OpenPayablesValue:    decimal.Zero,
		TopProducts:          []TopProduct{},
	}

	soldByProduct := make(map[string]int)
	for _, sale := range sales {
		switch sale.Status {
		case models.SaleStatusCompleted:
			summary.CompletedSales++
			summary.BilledRevenue = summary.BilledRevenue.Add(sale.TotalValue)
			soldByProduct[sale.ProductName] += sale.Quantity
		case models.SaleStatusPending:
			summary.PendingSales++
		}
	}

	for _, rec := range receivables {
		if rec.Status == models.ReceivableStatusReceived {
			summary.ReceivedRevenue = summary.ReceivedRevenue.Add(rec.Amount)
		}
		if rec.IsOpen() {
			summary.OpenReceivablesCount++
			summary.OpenReceivablesValue = summary.OpenReceivablesValue.Add(rec.Amount)
		}
	}

	for _, p := range payables {
		if p.IsOpen() {
			summary.OpenPayablesCount++
			summary.OpenPayablesValue = summary.OpenPayablesValue.Add(p.Amount)
		}
	}

	for name, qty := range soldByProduct {
		summary.TopProducts = append(summary.TopProducts, TopProduct{ProductName: name, QuantitySold: qty})
	}
	sort.Slice(summary.TopProducts, func(i, j int) bool {
		if summary.TopProducts[i].QuantitySold != summary.TopProducts[j].QuantitySold {
			return summary.TopProducts[i].QuantitySold > summary.TopProducts[j].QuantitySold
		}
		return summary.TopProducts[i].ProductName < summary.TopProducts[j].ProductName
	})
	if len(summary.TopProducts) > topProductLimit {
		summary.TopProducts = summary.TopProducts[:topProductLimit]
	}

	return summary, nil
}
