package snapshot

import (
	"time"
)

// Columns is the uniform column set, in presentation order. The analysis
// prompts document these names and the interpreter resolves column
// references against them.
var Columns = []string{
	"tipo_registro",
	"id_origem",
	"produto_nome",
	"cliente_nome",
	"fornecedor_nome",
	"categoria",
	"quantidade_vendida",
	"valor_total_venda",
	"data_transacao",
	"status_venda",
	"forma_pagamento",
	"condicao_prazo",
	"valor_conta_receber",
	"status_conta_receber",
	"data_vencimento_receber",
	"data_recebimento",
	"valor_conta_pagar",
	"status_conta_pagar",
	"data_vencimento_pagar",
	"data_pagamento",
	"preco_compra",
	"preco_venda",
	"quantidade_estoque",
}

// dateLayout is how dates render in row JSON and comparisons. ISO dates
// compare correctly as plain strings, which the interpreter relies on.
const dateLayout = "2006-01-02"

// IsNumericColumn reports whether the named column carries numbers.
func IsNumericColumn(name string) bool {
	switch name {
	case "id_origem", "quantidade_vendida", "valor_total_venda",
		"valor_conta_receber", "valor_conta_pagar",
		"preco_compra", "preco_venda", "quantidade_estoque":
		return true
	}
	return false
}

// IsDateColumn reports whether the named column carries dates.
func IsDateColumn(name string) bool {
	switch name {
	case "data_transacao", "data_vencimento_receber", "data_recebimento",
		"data_vencimento_pagar", "data_pagamento":
		return true
	}
	return false
}

// Row is one snapshot row. Pointer fields are null for record kinds
// that do not carry the column.
type Row struct {
	TipoRegistro          string
	IDOrigem              int64
	ProdutoNome           *string
	ClienteNome           *string
	FornecedorNome        *string
	Categoria             *string
	QuantidadeVendida     *float64
	ValorTotalVenda       *float64
	DataTransacao         *time.Time
	StatusVenda           *string
	FormaPagamento        *string
	CondicaoPrazo         *string
	ValorContaReceber     *float64
	StatusContaReceber    *string
	DataVencimentoReceber *time.Time
	DataRecebimento       *time.Time
	ValorContaPagar       *float64
	StatusContaPagar      *string
	DataVencimentoPagar   *time.Time
	DataPagamento         *time.Time
	PrecoCompra           *float64
	PrecoVenda            *float64
	QuantidadeEstoque     *float64
}

// Text returns the string value of a column. Numeric and date columns
// are rendered to their canonical string form. ok is false when the
// column is null or unknown.
func (r *Row) Text(column string) (string, bool) {
	switch column {
	case "tipo_registro":
		return r.TipoRegistro, true
	case "produto_nome":
		return deref(r.ProdutoNome)
	case "cliente_nome":
		return deref(r.ClienteNome)
	case "fornecedor_nome":
		return deref(r.FornecedorNome)
	case "categoria":
		return deref(r.Categoria)
	case "status_venda":
		return deref(r.StatusVenda)
	case "forma_pagamento":
		return deref(r.FormaPagamento)
	case "condicao_prazo":
		return deref(r.CondicaoPrazo)
	case "status_conta_receber":
		return deref(r.StatusContaReceber)
	case "status_conta_pagar":
		return deref(r.StatusContaPagar)
	default:
		if d, ok := r.Date(column); ok {
			return d.Format(dateLayout), true
		}
		return "", false
	}
}

// Number returns the numeric value of a column. Null and non-numeric
// columns coerce to 0 with ok false.
func (r *Row) Number(column string) (float64, bool) {
	switch column {
	case "id_origem":
		return float64(r.IDOrigem), true
	case "quantidade_vendida":
		return derefNum(r.QuantidadeVendida)
	case "valor_total_venda":
		return derefNum(r.ValorTotalVenda)
	case "valor_conta_receber":
		return derefNum(r.ValorContaReceber)
	case "valor_conta_pagar":
		return derefNum(r.ValorContaPagar)
	case "preco_compra":
		return derefNum(r.PrecoCompra)
	case "preco_venda":
		return derefNum(r.PrecoVenda)
	case "quantidade_estoque":
		return derefNum(r.QuantidadeEstoque)
	default:
		return 0, false
	}
}

// Date returns the date value of a column. ok is false when the column
// is null or not a date.
func (r *Row) Date(column string) (time.Time, bool) {
	var t *time.Time
	switch column {
	case "data_transacao":
		t = r.DataTransacao
	case "data_vencimento_receber":
		t = r.DataVencimentoReceber
	case "data_recebimento":
		t = r.DataRecebimento
	case "data_vencimento_pagar":
		t = r.DataVencimentoPagar
	case "data_pagamento":
		t = r.DataPagamento
	default:
		return time.Time{}, false
	}
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// Map flattens the row into a JSON-ready map keyed by column name.
// Absent values appear as explicit nulls so every row carries the full
// column set.
func (r *Row) Map() map[string]any {
	m := map[string]any{
		"tipo_registro":           r.TipoRegistro,
		"id_origem":               r.IDOrigem,
		"produto_nome":            anyOrNil(r.ProdutoNome),
		"cliente_nome":            anyOrNil(r.ClienteNome),
		"fornecedor_nome":         anyOrNil(r.FornecedorNome),
		"categoria":               anyOrNil(r.Categoria),
		"quantidade_vendida":      numOrNil(r.QuantidadeVendida),
		"valor_total_venda":       numOrNil(r.ValorTotalVenda),
		"data_transacao":          dateOrNil(r.DataTransacao),
		"status_venda":            anyOrNil(r.StatusVenda),
		"forma_pagamento":         anyOrNil(r.FormaPagamento),
		"condicao_prazo":          anyOrNil(r.CondicaoPrazo),
		"valor_conta_receber":     numOrNil(r.ValorContaReceber),
		"status_conta_receber":    anyOrNil(r.StatusContaReceber),
		"data_vencimento_receber": dateOrNil(r.DataVencimentoReceber),
		"data_recebimento":        dateOrNil(r.DataRecebimento),
		"valor_conta_pagar":       numOrNil(r.ValorContaPagar),
		"status_conta_pagar":      anyOrNil(r.StatusContaPagar),
		"data_vencimento_pagar":   dateOrNil(r.DataVencimentoPagar),
		"data_pagamento":          dateOrNil(r.DataPagamento),
		"preco_compra":            numOrNil(r.PrecoCompra),
		"preco_venda":             numOrNil(r.PrecoVenda),
		"quantidade_estoque":      numOrNil(r.QuantidadeEstoque),
	}
	return m
}

// Table is the flattened snapshot handed to the analysis pipeline.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table from records in order.
func NewTable(records []Record) *Table {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	return &Table{Columns: Columns, Rows: rows}
}

// HasColumn reports whether the snapshot carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Head returns the first n rows as JSON-ready maps for prompt embedding.
func (t *Table) Head(n int) []map[string]any {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, t.Rows[i].Map())
	}
	return out
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func derefNum(f *float64) (float64, bool) {
	if f == nil {
		return 0, false
	}
	return *f, true
}

func anyOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func numOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
