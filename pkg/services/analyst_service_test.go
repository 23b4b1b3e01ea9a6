package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/llm"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

type analystFixture struct {
	mock    *llm.MockLLMClient
	chat    *fakeChatRepo
	service AnalystService
}

// newAnalystFixture seeds three completed sales and one pending so data
// questions have something to count.
func newAnalystFixture(t *testing.T) *analystFixture {
	t.Helper()
	products := newFakeProductRepo()
	sales := newFakeSaleRepo(products)
	receivables := newFakeReceivableRepo()
	payables := newFakePayableRepo()

	require.NoError(t, products.Create(context.Background(), &models.Product{
		Name: "Caderno", SalePrice: decimal.RequireFromString("15.00"), StockQuantity: 100,
	}))
	saleSvc := NewSaleService(sales, products, receivables, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := saleSvc.Create(context.Background(), &SaleInput{
			ProductID: 1, Quantity: 1, Status: models.SaleStatusCompleted, PaymentMethod: models.PaymentCash,
		})
		require.NoError(t, err)
	}
	_, err := saleSvc.Create(context.Background(), &SaleInput{
		ProductID: 1, Quantity: 1, Status: models.SaleStatusPending, PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	mock := llm.NewMockLLMClient()
	chat := &fakeChatRepo{}
	builder := snapshot.NewBuilder(sales, receivables, payables, products, zap.NewNop())
	return &analystFixture{
		mock: mock,
		chat: chat,
		service: NewAnalystService(mock, chat, builder,
			5*time.Second, 10, 50, zap.NewNop()),
	}
}

// scriptReplies makes the mock return each reply in order: first call is
// always the intent classification.
func (f *analystFixture) scriptReplies(replies ...string) {
	i := 0
	f.mock.GenerateFunc = func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		if i >= len(replies) {
			return "", errors.New("unexpected extra llm call")
		}
		r := replies[i]
		i++
		return r, nil
	}
}

func TestAskSimpleCountQuestion(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"1",
		"resultado = filtrar(tipo_registro == \"Venda\", status_venda == \"CONCLUIDA\").contar()\n"+
			"---RESPOSTA---\n"+
			"Você teve [RESULTADO] vendas concluídas.",
	)

	res, err := f.service.Ask(context.Background(), "s1", "Quantas vendas concluídas?")
	require.NoError(t, err)
	assert.Equal(t, "Você teve 3 vendas concluídas.", res.Answer)
	assert.Empty(t, res.Diagnostico)
	assert.Equal(t, "3", res.DadosAnalisados["resultado"])
	assert.Equal(t, 2, f.mock.GenerateCalls)
}

func TestAskMonetaryQuestionFormatsCurrency(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"1",
		"resultado = filtrar(tipo_registro == \"Venda\", status_venda == \"CONCLUIDA\").somar(valor_total_venda)\n"+
			"---RESPOSTA---\n"+
			"O faturamento foi de [RESULTADO].",
	)

	res, err := f.service.Ask(context.Background(), "s1", "Qual o valor das vendas concluídas?")
	require.NoError(t, err)
	assert.Equal(t, "O faturamento foi de R$ 45,00.", res.Answer)
}

func TestAskStrategicAppendsSections(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"2",
		"resultado = filtrar(tipo_registro == \"Venda\", status_venda == \"CONCLUIDA\").somar(valor_total_venda)\n"+
			"---RESPOSTA---\n"+
			"Seu faturamento atual é [RESULTADO].\n"+
			"Diagnóstico:\nVolume de vendas concentrado em um único produto.\n"+
			"Plano de Ação:\nDiversifique o catálogo.",
	)

	res, err := f.service.Ask(context.Background(), "s1", "Como está meu faturamento?")
	require.NoError(t, err)
	assert.Equal(t, "Volume de vendas concentrado em um único produto.", res.Diagnostico)
	assert.Equal(t, "Diversifique o catálogo.", res.PlanoDeAcao)
	assert.Contains(t, res.Answer, "Seu faturamento atual é R$ 45,00.")
	assert.Contains(t, res.Answer, "Diagnóstico:\nVolume de vendas")
	assert.Contains(t, res.Answer, "Plano de Ação:\nDiversifique")
}

func TestAskDropsNotApplicableSections(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"2",
		"resultado = contar()\n"+
			"---RESPOSTA---\n"+
			"Há [RESULTADO] registros.\n"+
			"Diagnóstico:\nnão aplicável\n"+
			"Plano de Ação:\nN/A",
	)

	res, err := f.service.Ask(context.Background(), "s1", "Quantos registros existem?")
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostico)
	assert.Empty(t, res.PlanoDeAcao)
	assert.NotContains(t, res.Answer, "Diagnóstico:")
	assert.NotContains(t, res.Answer, "Plano de Ação:")
}

func TestAskGeneralConversationSkipsData(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies("3", "Olá! Posso analisar suas vendas, contas e estoque.")

	res, err := f.service.Ask(context.Background(), "s1", "Olá, tudo bem?")
	require.NoError(t, err)
	assert.Equal(t, "Olá! Posso analisar suas vendas, contas e estoque.", res.Answer)
	assert.Nil(t, res.DadosAnalisados)

	// The conversational path never embeds snapshot rows.
	for _, p := range f.mock.Prompts[1:] {
		assert.NotContains(t, p, "AMOSTRA DOS DADOS")
	}
}

func TestAskAmbiguousIntentDefaultsToStrategic(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"como assim?",
		"resultado = contar()\n---RESPOSTA---\nTotal: [RESULTADO]\nDiagnóstico:\nn/a\nPlano de Ação:\nn/a",
	)

	_, err := f.service.Ask(context.Background(), "s1", "hmm")
	require.NoError(t, err)
	require.Len(t, f.mock.Prompts, 2)
	assert.Contains(t, f.mock.Prompts[1], "Plano de Ação:",
		"unparseable classification must take the strategic path")
}

func TestAskMissingDelimiterYieldsApology(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies("1", "Aqui está sua resposta sem o formato combinado.")

	res, err := f.service.Ask(context.Background(), "s1", "Quantas vendas?")
	require.NoError(t, err)
	assert.Equal(t, Apology, res.Answer)
}

func TestAskExecutionErrorYieldsApology(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies(
		"1",
		"resultado = explodir(tudo)\n---RESPOSTA---\nTotal: [RESULTADO]",
	)

	res, err := f.service.Ask(context.Background(), "s1", "Quantas vendas?")
	require.NoError(t, err)
	assert.Equal(t, Apology, res.Answer)
}

func TestAskPersistsBothTurns(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies("3", "Olá!")

	_, err := f.service.Ask(context.Background(), "s1", "Oi")
	require.NoError(t, err)

	require.Len(t, f.chat.messages, 2)
	assert.Equal(t, models.ChatRoleUser, f.chat.messages[0].Role)
	assert.Equal(t, "Oi", f.chat.messages[0].Content)
	assert.Equal(t, models.ChatRoleAssistant, f.chat.messages[1].Role)
	assert.Equal(t, "Olá!", f.chat.messages[1].Content)
}

func TestAskApologyIsPersistedNotRawReply(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies("1", "resposta quebrada sem delimitador")

	_, err := f.service.Ask(context.Background(), "s1", "Quantas vendas?")
	require.NoError(t, err)

	require.Len(t, f.chat.messages, 2)
	assert.Equal(t, Apology, f.chat.messages[1].Content)
	for _, m := range f.chat.messages {
		assert.NotContains(t, m.Content, "resposta quebrada")
	}
}

func TestAskCollaboratorUnavailable(t *testing.T) {
	f := newAnalystFixture(t)
	f.mock.GenerateFunc = func(context.Context, string, []llm.Message) (string, error) {
		return "", errors.New("connection refused")
	}

	_, err := f.service.Ask(context.Background(), "s1", "Quantas vendas?")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestAskFeedsHistoryToClassifier(t *testing.T) {
	f := newAnalystFixture(t)
	f.scriptReplies("3", "Olá de novo!")

	require.NoError(t, f.chat.SaveMessage(context.Background(), &models.ChatMessage{
		SessionID: "s1", Role: models.ChatRoleUser, Content: "Quantas vendas tive em março?",
	}))
	require.NoError(t, f.chat.SaveMessage(context.Background(), &models.ChatMessage{
		SessionID: "s1", Role: models.ChatRoleAssistant, Content: "Você teve 3 vendas.",
	}))

	_, err := f.service.Ask(context.Background(), "s1", "Obrigado!")
	require.NoError(t, err)

	intentPrompt := f.mock.Prompts[0]
	assert.True(t, strings.Contains(intentPrompt, "Quantas vendas tive em março?") &&
		strings.Contains(intentPrompt, "Você teve 3 vendas."),
		"classifier prompt must embed prior turns")
}
