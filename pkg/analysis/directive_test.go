package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	raw := "resultado = filtrar(status_venda == \"CONCLUIDA\").contar()\n" +
		"---RESPOSTA---\n" +
		"Você teve [RESULTADO] vendas concluídas."

	d, err := ParseDirective(raw)
	require.NoError(t, err)
	assert.Equal(t, `resultado = filtrar(status_venda == "CONCLUIDA").contar()`, d.Program)
	assert.Equal(t, "Você teve [RESULTADO] vendas concluídas.", d.Template)
}

func TestParseDirectiveStripsCodeFences(t *testing.T) {
	raw := "```\nresultado = contar()\n---RESPOSTA---\nTotal: [RESULTADO]\n```"

	d, err := ParseDirective(raw)
	require.NoError(t, err)
	assert.Equal(t, "resultado = contar()", d.Program)
	assert.Equal(t, "Total: [RESULTADO]", d.Template)
}

func TestParseDirectiveFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty reply", "   \n  "},
		{"missing delimiter", "resultado = contar()\nTotal: [RESULTADO]"},
		{"multiple delimiters", "a\n---RESPOSTA---\nb\n---RESPOSTA---\nc"},
		{"empty program", "---RESPOSTA---\nTotal: [RESULTADO]"},
		{"empty template", "resultado = contar()\n---RESPOSTA---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDirective(tt.raw)
			require.Error(t, err)
			var formatErr *FormatError
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}
