// Package snapshot builds the read-only, flattened table of business
// records the analysis pipeline runs against. Every record kind projects
// onto the same column set so downstream code can treat the snapshot as
// one uniform table.
package snapshot

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record type tags. Capitalization matters: the column documentation in
// the analysis prompts references these exact strings.
const (
	KindSale       = "Venda"
	KindReceivable = "ContaReceber"
	KindPayable    = "ContaPagar"
	KindProduct    = "Produto"
)

// Record is one business record that knows how to project itself onto
// the uniform column set.
type Record interface {
	Row() Row
}

// SaleRecord is a sale joined with its product and customer names.
type SaleRecord struct {
	ID            int64
	ProductName   string
	CustomerName  *string
	Quantity      int
	Total         decimal.Decimal
	Date          time.Time
	Status        string
	PaymentMethod string
	Term          *string
}

// Row implements Record.
func (r SaleRecord) Row() Row {
	qty := float64(r.Quantity)
	total := r.Total.InexactFloat64()
	date := r.Date
	return Row{
		TipoRegistro:    KindSale,
		IDOrigem:        r.ID,
		ProdutoNome:     strPtr(r.ProductName),
		ClienteNome:     customerOrDefault(r.CustomerName),
		QuantidadeVendida: &qty,
		ValorTotalVenda:   &total,
		DataTransacao:     &date,
		StatusVenda:       strPtr(r.Status),
		FormaPagamento:    strPtr(r.PaymentMethod),
		CondicaoPrazo:     termOrCash(r.Term),
	}
}

// ReceivableRecord is a receivable, carrying sale context when linked.
type ReceivableRecord struct {
	ID           int64
	CustomerName *string
	Amount       decimal.Decimal
	Status       string
	DueDate      time.Time
	ReceivedDate *time.Time

	// Originating sale context; nil fields when the receivable is not
	// linked to a sale.
	SaleProductName   *string
	SaleQuantity      *int
	SaleTotal         *decimal.Decimal
	SaleDate          *time.Time
	SaleStatus        *string
	SalePaymentMethod *string
	SaleTerm          *string
}

// Row implements Record.
func (r ReceivableRecord) Row() Row {
	amount := r.Amount.InexactFloat64()
	due := r.DueDate
	row := Row{
		TipoRegistro:          KindReceivable,
		IDOrigem:              r.ID,
		ClienteNome:           customerOrDefault(r.CustomerName),
		ValorContaReceber:     &amount,
		StatusContaReceber:    strPtr(r.Status),
		DataVencimentoReceber: &due,
		DataRecebimento:       r.ReceivedDate,
		ProdutoNome:           r.SaleProductName,
	}
	if r.SaleQuantity != nil {
		qty := float64(*r.SaleQuantity)
		row.QuantidadeVendida = &qty
	}
	if r.SaleTotal != nil {
		total := r.SaleTotal.InexactFloat64()
		row.ValorTotalVenda = &total
	}
	row.DataTransacao = r.SaleDate
	row.StatusVenda = r.SaleStatus
	row.FormaPagamento = r.SalePaymentMethod
	if r.SaleStatus != nil {
		row.CondicaoPrazo = termOrCash(r.SaleTerm)
	}
	return row
}

// PayableRecord is a payable joined with its supplier name.
type PayableRecord struct {
	ID           int64
	SupplierName *string
	Amount       decimal.Decimal
	Status       string
	DueDate      time.Time
	PaidDate     *time.Time
}

// Row implements Record.
func (r PayableRecord) Row() Row {
	amount := r.Amount.InexactFloat64()
	due := r.DueDate
	return Row{
		TipoRegistro:        KindPayable,
		IDOrigem:            r.ID,
		FornecedorNome:      r.SupplierName,
		ValorContaPagar:     &amount,
		StatusContaPagar:    strPtr(r.Status),
		DataVencimentoPagar: &due,
		DataPagamento:       r.PaidDate,
	}
}

// ProductRecord is a catalog product with stock and pricing.
type ProductRecord struct {
	ID            int64
	Name          string
	CategoryName  *string
	SupplierName  *string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	StockQuantity int
}

// Row implements Record.
func (r ProductRecord) Row() Row {
	purchase := r.PurchasePrice.InexactFloat64()
	sale := r.SalePrice.InexactFloat64()
	stock := float64(r.StockQuantity)
	return Row{
		TipoRegistro:       KindProduct,
		IDOrigem:           r.ID,
		ProdutoNome:        strPtr(r.Name),
		Categoria:          r.CategoryName,
		FornecedorNome:     r.SupplierName,
		PrecoCompra:        &purchase,
		PrecoVenda:         &sale,
		QuantidadeEstoque:  &stock,
	}
}

func strPtr(s string) *string { return &s }

// Unnamed customers read as walk-in sales.
func customerOrDefault(name *string) *string {
	if name == nil || *name == "" {
		s := "Consumidor Final"
		return &s
	}
	return name
}

// Absent payment terms read as cash.
func termOrCash(term *string) *string {
	if term == nil || *term == "" {
		s := "À Vista"
		return &s
	}
	return term
}
