package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

func money(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func evalTable() *snapshot.Table {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	cliente := "Maria"
	return snapshot.NewTable([]snapshot.Record{
		snapshot.SaleRecord{ID: 1, ProductName: "Caderno", CustomerName: &cliente, Quantity: 3,
			Total: money("45.00"), Date: day, Status: models.SaleStatusCompleted, PaymentMethod: models.PaymentCash},
		snapshot.SaleRecord{ID: 2, ProductName: "Caneta", Quantity: 10,
			Total: money("25.00"), Date: day.AddDate(0, 0, 5), Status: models.SaleStatusCompleted, PaymentMethod: models.PaymentCash},
		snapshot.SaleRecord{ID: 3, ProductName: "Caneta", Quantity: 2,
			Total: money("5.00"), Date: day, Status: models.SaleStatusPending, PaymentMethod: models.PaymentCash},
		snapshot.ReceivableRecord{ID: 7, Amount: money("30.00"),
			Status: models.ReceivableStatusOpen, DueDate: day.AddDate(0, 0, 14)},
	})
}

func run(t *testing.T, program string) (*Result, error) {
	t.Helper()
	prog, err := ParseProgram(program)
	require.NoError(t, err)
	return Evaluate(context.Background(), evalTable(), prog)
}

func TestEvaluateFilterCount(t *testing.T) {
	res, err := run(t, `resultado = filtrar(status_venda == "CONCLUIDA").contar()`)
	require.NoError(t, err)
	assert.Equal(t, ResultNumber, res.Kind)
	assert.Equal(t, 2.0, res.Number)
}

// Receivables linked to a sale repeat the sale's columns, so analyses
// over sale columns must pin tipo_registro or every completed sale is
// seen twice.
func TestEvaluateTypeFilterSeparatesJoinedReceivableRows(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	status := models.SaleStatusCompleted
	total := money("45.00")
	table := snapshot.NewTable([]snapshot.Record{
		snapshot.SaleRecord{ID: 1, ProductName: "Caderno", Quantity: 3,
			Total: total, Date: day, Status: status, PaymentMethod: models.PaymentCash},
		snapshot.ReceivableRecord{ID: 7, Amount: total,
			Status: models.ReceivableStatusReceived, DueDate: day,
			SaleStatus: &status, SaleTotal: &total},
	})

	prog, err := ParseProgram(`resultado = filtrar(status_venda == "CONCLUIDA").contar()`)
	require.NoError(t, err)
	res, err := Evaluate(context.Background(), table, prog)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Number, "the joined receivable row carries the sale status")

	prog, err = ParseProgram(`resultado = filtrar(tipo_registro == "Venda", status_venda == "CONCLUIDA").contar()`)
	require.NoError(t, err)
	res, err = Evaluate(context.Background(), table, prog)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Number, "pinning tipo_registro counts each sale once")

	prog, err = ParseProgram(`resultado = filtrar(tipo_registro == "Venda", status_venda == "CONCLUIDA").somar(valor_total_venda)`)
	require.NoError(t, err)
	res, err = Evaluate(context.Background(), table, prog)
	require.NoError(t, err)
	assert.Equal(t, 45.0, res.Number)
}

func TestEvaluateFilterSum(t *testing.T) {
	res, err := run(t, `resultado = filtrar(tipo_registro == "Venda", status_venda == "CONCLUIDA").somar(valor_total_venda)`)
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.Number)
}

func TestEvaluateAverageMaxMin(t *testing.T) {
	res, err := run(t, `resultado = filtrar(tipo_registro == "Venda").media(valor_total_venda)`)
	require.NoError(t, err)
	assert.Equal(t, 25.0, res.Number)

	res, err = run(t, `resultado = filtrar(tipo_registro == "Venda").maximo(quantidade_vendida)`)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Number)

	res, err = run(t, `resultado = filtrar(tipo_registro == "Venda").minimo(valor_total_venda)`)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Number)
}

func TestEvaluateNumericAndDateConditions(t *testing.T) {
	res, err := run(t, `resultado = filtrar(quantidade_vendida > 2).contar()`)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Number)

	res, err = run(t, `resultado = filtrar(data_transacao >= "2025-03-12").contar()`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Number)
}

func TestEvaluateGroupTopN(t *testing.T) {
	res, err := run(t, `resultado = filtrar(tipo_registro == "Venda").agrupar(produto_nome, somar(quantidade_vendida)).primeiros(1)`)
	require.NoError(t, err)
	require.Equal(t, ResultMapping, res.Kind)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Caneta", res.Groups[0].Label)
	assert.Equal(t, 12.0, res.Groups[0].Value)
}

func TestEvaluateGroupKeepsFirstSeenOrder(t *testing.T) {
	res, err := run(t, `resultado = filtrar(tipo_registro == "Venda").agrupar(produto_nome, contar())`)
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Caderno", res.Groups[0].Label)
	assert.Equal(t, "Caneta", res.Groups[1].Label)
}

func TestEvaluateUnaggregatedChainIsMissing(t *testing.T) {
	res, err := run(t, `resultado = filtrar(status_venda == "PENDENTE")`)
	require.NoError(t, err)
	assert.Equal(t, ResultMissing, res.Kind)
}

func TestEvaluateExecutionFailures(t *testing.T) {
	tests := []struct {
		name    string
		program string
	}{
		{"unknown verb", `resultado = explodir()`},
		{"unknown column", `resultado = somar(lucro_liquido)`},
		{"non-numeric aggregate", `resultado = somar(produto_nome)`},
		{"empty set average", `resultado = filtrar(status_venda == "CANCELADA").media(valor_total_venda)`},
		{"count on groups", `resultado = agrupar(produto_nome, contar()).somar(valor_total_venda)`},
		{"bad syntax", `resultado = filtrar(status_venda == )`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := ParseProgram(tt.program)
			if err != nil {
				var execErr *ExecutionError
				assert.ErrorAs(t, err, &execErr)
				return
			}
			_, err = Evaluate(context.Background(), evalTable(), prog)
			require.Error(t, err)
			var execErr *ExecutionError
			assert.ErrorAs(t, err, &execErr)
		})
	}
}

func TestParseProgramRequiresResultado(t *testing.T) {
	_, err := ParseProgram(`total = contar()`)
	assert.ErrorIs(t, err, ErrResultMissing)

	_, err = ParseProgram(`contar()`)
	assert.ErrorIs(t, err, ErrResultMissing)
}

func TestEvaluateHonorsCancellation(t *testing.T) {
	prog, err := ParseProgram(`resultado = contar()`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Evaluate(ctx, evalTable(), prog)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateCountRespectsStepBound(t *testing.T) {
	records := make([]snapshot.Record, maxSteps+1)
	for i := range records {
		records[i] = snapshot.ProductRecord{ID: int64(i + 1), Name: "Item"}
	}
	prog, err := ParseProgram(`resultado = contar()`)
	require.NoError(t, err)

	_, err = Evaluate(context.Background(), snapshot.NewTable(records), prog)
	require.Error(t, err)
	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Msg, "step limit")
}

func TestProgramString(t *testing.T) {
	prog, err := ParseProgram(`resultado = filtrar(status_venda == "CONCLUIDA").contar()`)
	require.NoError(t, err)
	assert.Equal(t, `resultado = filtrar(status_venda == "CONCLUIDA").contar()`, prog.String())
}
