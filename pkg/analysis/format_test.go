package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResultMonetaryVsCount(t *testing.T) {
	res := &Result{Kind: ResultNumber, Number: 1234.5}

	// The same number diverges by context: currency keeps cents,
	// counts truncate toward zero.
	assert.Equal(t, "R$ 1.234,50",
		FormatResult(res, "Qual o valor total de vendas?", "O total foi [RESULTADO]."))
	assert.Equal(t, "1.234",
		FormatResult(res, "Quantas unidades vendemos?", "Vendemos [RESULTADO] unidades."))
}

func TestFormatResultTruncatesTowardZero(t *testing.T) {
	assert.Equal(t, "7",
		FormatResult(&Result{Kind: ResultNumber, Number: 7.9}, "Quantos produtos?", "[RESULTADO]"))
	assert.Equal(t, "-7",
		FormatResult(&Result{Kind: ResultNumber, Number: -7.9}, "Quantos produtos?", "[RESULTADO]"))
}

func TestFormatResultMapping(t *testing.T) {
	res := &Result{Kind: ResultMapping, Groups: []GroupEntry{
		{Label: "Caneta", Value: 1500.0},
		{Label: "Caderno", Value: 320.5},
	}}

	got := FormatResult(res, "Qual o faturamento por produto?", "[RESULTADO]")
	assert.Equal(t, "- Caneta: R$ 1.500,00\n- Caderno: R$ 320,50", got)

	got = FormatResult(res, "Quantas vendas por produto?", "[RESULTADO]")
	assert.Equal(t, "- Caneta: 1.500\n- Caderno: 320", got)
}

func TestFormatResultEmptyMappingIsEmptyString(t *testing.T) {
	res := &Result{Kind: ResultMapping}
	got := FormatResult(res, "Qual o valor por cliente?", "[RESULTADO]")
	assert.Empty(t, got, "empty mapping must not read as zero")
}

func TestFormatResultMissing(t *testing.T) {
	res := &Result{Kind: ResultMissing}
	assert.Equal(t, "R$ 0,00", FormatResult(res, "Qual o valor em aberto?", "[RESULTADO]"))
	assert.Equal(t, "N/A", FormatResult(res, "Quando foi a última venda?", "[RESULTADO]"))
}

func TestIsMonetary(t *testing.T) {
	assert.True(t, IsMonetary("Qual a RECEITA do mês?"))
	assert.True(t, IsMonetary("quanto tenho a pagar"))
	assert.False(t, IsMonetary("Quantos clientes temos?"))
}
