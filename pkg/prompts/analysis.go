package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

// grammarDoc describes the closed analysis grammar the model must emit.
// The interpreter rejects anything outside it, so the wording here and
// the evaluator must stay in lockstep.
const grammarDoc = `A primeira parte DEVE ser um único comando na seguinte gramática fechada, nada mais:

    resultado = filtrar(tipo_registro == "Venda", status_venda == "CONCLUIDA").contar()

Verbos disponíveis (encadeados com "."):
- filtrar(condições...): mantém as linhas que satisfazem TODAS as condições. Operadores: ==, !=, >, >=, <, <=. Datas comparam no formato "AAAA-MM-DD".
- contar(): número de linhas.
- somar(coluna) / media(coluna) / maximo(coluna) / minimo(coluna): agregam uma coluna numérica.
- agrupar(coluna, verbo(coluna)): um valor agregado por grupo.
- primeiros(n): os n maiores grupos (após agrupar) ou as n primeiras linhas.

O comando DEVE atribuir a "resultado". O primeiro filtrar DEVE incluir uma condição sobre tipo_registro: contas a receber ligadas a uma venda repetem as colunas da venda, então um filtro só por status_venda ou valor_total_venda contaria cada venda duas vezes. Não use nenhuma outra função, variável, aritmética ou laço.`

// contractDoc pins the two-part reply format.
const contractDoc = `FORMATO DA RESPOSTA (siga exatamente):
1. O comando de análise.
2. Uma linha contendo somente ---RESPOSTA---
3. O texto da resposta ao usuário, em português, contendo o marcador [RESULTADO] onde o valor calculado deve aparecer.`

// noFabrication is the hard rule against invented data.
const noFabrication = `REGRA CRÍTICA: use SOMENTE os dados e métricas fornecidos. NÃO invente, adivinhe ou fabrique dados, nomes, valores ou cenários.`

// BuildGeneralPrompt handles greetings and off-topic conversation; no
// data is embedded and no analysis contract applies.
func BuildGeneralPrompt(question string) string {
	return fmt.Sprintf(`Você é um assistente de gestão de um pequeno negócio. O usuário enviou uma mensagem de conversa geral, não um pedido de análise de dados.

Responda de forma breve, simpática e em português. Se fizer sentido, mencione que você pode analisar vendas, contas a receber, contas a pagar e estoque.

Mensagem do usuário: %q`, question)
}

// BuildSimplePrompt asks for a direct numeric answer to a data question.
func BuildSimplePrompt(question string, table *snapshot.Table, metrics map[string]float64, maxRows int) string {
	var sb strings.Builder

	sb.WriteString("Você é um analista de dados de um pequeno negócio. Responda à pergunta do usuário calculando o valor pedido sobre os dados fornecidos.\n\n")
	writeData(&sb, table, metrics, maxRows)
	sb.WriteString(noFabrication + "\n\n")
	sb.WriteString(grammarDoc + "\n\n")
	sb.WriteString(contractDoc + "\n\n")
	sb.WriteString("Prefira as métricas agregadas acima quando a pergunta corresponder diretamente a uma delas; ainda assim, emita o comando que a calcula.\n\n")
	fmt.Fprintf(&sb, "Pergunta do usuário: %q\n", question)

	return sb.String()
}

// BuildStrategicPrompt asks for the calculated result plus diagnosis and
// an action plan.
func BuildStrategicPrompt(question string, table *snapshot.Table, metrics map[string]float64, maxRows int) string {
	var sb strings.Builder

	sb.WriteString("Você é um consultor de gestão de um pequeno negócio. O usuário quer uma análise aprofundada, com diagnóstico e plano de ação baseados nos dados fornecidos.\n\n")
	writeData(&sb, table, metrics, maxRows)
	sb.WriteString(noFabrication + "\n\n")
	sb.WriteString(grammarDoc + "\n\n")
	sb.WriteString(contractDoc + "\n\n")
	sb.WriteString("Prefira as métricas agregadas acima quando a pergunta corresponder diretamente a uma delas; ainda assim, emita o comando que a calcula.\n\n")
	sb.WriteString(`Depois do texto principal, acrescente estas duas seções, cada uma iniciada exatamente pelo rótulo na própria linha:

Diagnóstico:
(diagnóstico conciso e factual baseado nos dados; escreva "não aplicável" se não houver dados suficientes)

Plano de Ação:
(ações práticas e específicas usando nomes de produtos e clientes dos dados; escreva "não aplicável" se não houver dados suficientes)` + "\n\n")
	fmt.Fprintf(&sb, "Pergunta do usuário: %q\n", question)

	return sb.String()
}

// writeData embeds the column documentation, the aggregate metrics, and
// the leading snapshot rows as JSON.
func writeData(sb *strings.Builder, table *snapshot.Table, metrics map[string]float64, maxRows int) {
	sb.WriteString("COLUNAS DISPONÍVEIS (cada linha é um registro do tipo indicado em tipo_registro: \"Venda\", \"ContaReceber\", \"ContaPagar\" ou \"Produto\"; colunas de outros tipos ficam nulas):\n")
	sb.WriteString(strings.Join(table.Columns, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("MÉTRICAS AGREGADAS (calculadas sobre TODOS os registros, já prontas para uso):\n")
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "- %s: %.2f\n", k, metrics[k])
	}
	sb.WriteString("\n")

	head := table.Head(maxRows)
	rows, err := json.Marshal(head)
	if err != nil {
		// Row maps hold only strings, numbers and nulls; marshal cannot
		// fail on them.
		rows = []byte("[]")
	}
	fmt.Fprintf(sb, "AMOSTRA DOS DADOS (%d de %d registros, JSON):\n%s\n\n", len(head), len(table.Rows), rows)
}
