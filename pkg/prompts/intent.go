// Package prompts builds the Portuguese instruction texts sent to the
// model: intent classification and the three analysis variants.
package prompts

import (
	"fmt"
	"strings"

	"github.com/balcao-digital/gestor-engine/pkg/llm"
)

// Intent categories. The classifier replies with the bare numeral.
const (
	IntentSimple    = 1 // direct data question
	IntentStrategic = 2 // diagnosis and action plan expected
	IntentGeneral   = 3 // greeting or off-topic conversation
)

// BuildIntentPrompt creates the closed-category classification prompt.
// History gives the classifier conversational context for follow-ups.
func BuildIntentPrompt(question string, history []llm.Message) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString("Histórico da conversa:\n")
		for _, msg := range history {
			if msg.Role == "assistant" {
				sb.WriteString("Assistente: " + msg.Content + "\n")
			} else {
				sb.WriteString("Usuário: " + msg.Content + "\n")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf(`Com base na seguinte pergunta do usuário e no histórico da conversa, classifique a intenção principal do usuário em uma das seguintes categorias. Responda APENAS com o número da categoria.

Pergunta do Usuário: %q

Categorias de Intenção:
1. Análise de dados simples (ex: "Qual o total de vendas?", "Número de clientes", "Valor das contas a pagar"). Não pede diagnóstico, plano de ação ou insights aprofundados.
2. Análise de dados aprofundada/Estratégica (ex: "Me dê um plano de ação para aumentar as vendas", "Análise de lucratividade", "Por que as vendas caíram?", "Sugestões para o negócio"). Exige diagnóstico, plano de ação e insights.
3. Conversa geral/saudação/ajuda não relacionada a análise de dados (ex: "Olá", "Tudo bem?", "Obrigado", "Me conte sobre você", "Quais suas funcionalidades?").

Responda APENAS com o número da categoria (1, 2 ou 3).`, question))

	return sb.String()
}

// ParseIntent extracts the first category numeral from the classifier
// reply. ok is false when no category numeral is present; callers treat
// that as an ambiguous classification.
func ParseIntent(reply string) (int, bool) {
	for _, r := range reply {
		switch r {
		case '1':
			return IntentSimple, true
		case '2':
			return IntentStrategic, true
		case '3':
			return IntentGeneral, true
		}
	}
	return 0, false
}
