package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// monetaryKeywords mark a question or template as asking about money.
// Matched case-insensitively against the lowered text.
var monetaryKeywords = []string{
	"valor",
	"faturamento",
	"receita",
	"custo",
	"preço",
	"preco",
	"r$",
	"reais",
	"lucro",
	"ticket",
	"pagar",
	"receber",
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// IsMonetary reports whether the question/template text asks about a
// monetary quantity.
func IsMonetary(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range monetaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FormatResult renders a program result for substitution into the
// response template. Monetary context comes from the question plus the
// template text.
func FormatResult(res *Result, question, template string) string {
	monetary := IsMonetary(question + " " + template)

	switch res.Kind {
	case ResultNumber:
		return formatNumber(res.Number, monetary)
	case ResultMapping:
		if len(res.Groups) == 0 {
			// An empty grouping is absence of data, never zero.
			return ""
		}
		lines := make([]string, 0, len(res.Groups))
		for _, g := range res.Groups {
			lines = append(lines, fmt.Sprintf("- %s: %s", g.Label, formatNumber(g.Value, monetary)))
		}
		return strings.Join(lines, "\n")
	default:
		if monetary {
			return formatNumber(0, true)
		}
		return "N/A"
	}
}

// formatNumber renders pt-BR separators: monetary values get the R$
// prefix and two decimals, counts truncate toward zero.
func formatNumber(v float64, monetary bool) string {
	if monetary {
		return ptBR.Sprintf("R$ %.2f", v)
	}
	return ptBR.Sprintf("%d", int64(v))
}
