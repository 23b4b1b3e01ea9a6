package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale status codes. Stored values are the Portuguese codes the business
// operates with; they also flow verbatim into the analysis snapshot.
const (
	SaleStatusPending   = "PENDENTE"
	SaleStatusCompleted = "CONCLUIDA"
)

// Payment method codes.
const (
	PaymentCash = "AV" // à vista
	PaymentTerm = "AP" // a prazo
)

// Payment term codes for PaymentTerm sales.
const (
	Term7Days  = "7D"
	Term14Days = "14D"
	Term28Days = "28D"
)

// Sale records one sale of a single product.
type Sale struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"product_id"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	Quantity      int             `json:"quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	SaleDate      time.Time       `json:"sale_date"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PaymentTerm   *string         `json:"payment_term,omitempty"`
}

// TermDays maps a payment term code to its day count. Unknown or absent
// terms count as zero (due immediately).
func TermDays(term *string) int {
	if term == nil {
		return 0
	}
	switch *term {
	case Term7Days:
		return 7
	case Term14Days:
		return 14
	case Term28Days:
		return 28
	}
	return 0
}
