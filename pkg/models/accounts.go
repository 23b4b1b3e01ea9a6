package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receivable status codes.
const (
	ReceivableStatusOpen      = "ABERTO"
	ReceivableStatusReceived  = "RECEBIDO"
	ReceivableStatusOverdue   = "ATRASADO"
	ReceivableStatusCancelled = "CANCELADO"
)

// Payable status codes.
const (
	PayableStatusOpen      = "ABERTO"
	PayableStatusPaid      = "PAGO"
	PayableStatusOverdue   = "ATRASADO"
	PayableStatusCancelled = "CANCELADO"
)

// Receivable is money owed to the business. At most one receivable is
// linked to a given sale; sale-linked receivables are managed by the sale
// completion flow, manual ones have a nil SaleID.
type Receivable struct {
	ID           int64           `json:"id"`
	SaleID       *int64          `json:"sale_id,omitempty"`
	CustomerID   *int64          `json:"customer_id,omitempty"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	IssueDate    time.Time       `json:"issue_date"`
	DueDate      time.Time       `json:"due_date"`
	ReceivedDate *time.Time      `json:"received_date,omitempty"`
	Status       string          `json:"status"`
}

// IsOpen reports whether the receivable still awaits payment.
func (r *Receivable) IsOpen() bool {
	return r.Status == ReceivableStatusOpen || r.Status == ReceivableStatusOverdue
}

// Payable is money the business owes a supplier.
type Payable struct {
	ID          int64           `json:"id"`
	SupplierID  *int64          `json:"supplier_id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IssueDate   time.Time       `json:"issue_date"`
	DueDate     time.Time       `json:"due_date"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	Status      string          `json:"status"`
}

// IsOpen reports whether the payable still awaits payment.
func (p *Payable) IsOpen() bool {
	return p.Status == PayableStatusOpen || p.Status == PayableStatusOverdue
}
