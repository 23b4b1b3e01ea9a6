package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/analysis"
	"github.com/balcao-digital/gestor-engine/pkg/apperrors"
	"github.com/balcao-digital/gestor-engine/pkg/llm"
	"github.com/balcao-digital/gestor-engine/pkg/models"
	"github.com/balcao-digital/gestor-engine/pkg/prompts"
	"github.com/balcao-digital/gestor-engine/pkg/repositories"
	"github.com/balcao-digital/gestor-engine/pkg/retry"
	"github.com/balcao-digital/gestor-engine/pkg/snapshot"
)

// Apology is the fixed answer for any internal pipeline failure. It
// travels inside a success envelope so the conversation keeps flowing.
const Apology = "Desculpe, tive um problema ao processar sua solicitação. Por favor, tente novamente."

// diagnosisLabel / actionPlanLabel mark the strategic sections in the
// model's template and in the assembled answer.
const (
	diagnosisLabel  = "Diagnóstico:"
	actionPlanLabel = "Plano de Ação:"
)

// notApplicable are section bodies that mean "nothing to say"; they are
// dropped rather than shown to the user.
var notApplicable = map[string]bool{
	"não aplicável": true,
	"nao aplicavel": true,
	"não aplicavel": true,
	"n/a":           true,
	"na":            true,
}

// AskResult is the assembled analyst reply.
type AskResult struct {
	Answer          string         `json:"answer"`
	Diagnostico     string         `json:"diagnostico,omitempty"`
	PlanoDeAcao     string         `json:"plano_de_acao,omitempty"`
	DadosAnalisados map[string]any `json:"dados_analisados,omitempty"`
}

// AnalystService runs the conversational analysis pipeline: classify
// the question, snapshot the data, have the model write an analysis
// program plus template, execute the program locally, and assemble the
// final answer.
type AnalystService interface {
	Ask(ctx context.Context, sessionID, question string) (*AskResult, error)
}

type analystService struct {
	client       llm.LLMClient
	chat         repositories.ChatRepository
	snapshots    *snapshot.Builder
	retryCfg     *retry.Config
	timeout      time.Duration
	historyTurns int
	snapshotRows int
	logger       *zap.Logger
}

// NewAnalystService creates a new AnalystService.
func NewAnalystService(
	client llm.LLMClient,
	chat repositories.ChatRepository,
	snapshots *snapshot.Builder,
	timeout time.Duration,
	historyTurns int,
	snapshotRows int,
	logger *zap.Logger,
) AnalystService {
	return &analystService{
		client:       client,
		chat:         chat,
		snapshots:    snapshots,
		retryCfg:     retry.DefaultConfig(),
		timeout:      timeout,
		historyTurns: historyTurns,
		snapshotRows: snapshotRows,
		logger:       logger.Named("analyst"),
	}
}

var _ AnalystService = (*analystService)(nil)

func (s *analystService) Ask(ctx context.Context, sessionID, question string) (*AskResult, error) {
	// History is read before the question is persisted so prompts see
	// only prior turns.
	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if err := s.persist(ctx, sessionID, models.ChatRoleUser, question); err != nil {
		return nil, fmt.Errorf("persist question: %w", err)
	}

	intent, err := s.classify(ctx, question, history)
	if err != nil {
		return s.failure(ctx, sessionID, err)
	}

	var result *AskResult
	switch intent {
	case prompts.IntentGeneral:
		result, err = s.converse(ctx, question, history)
	case prompts.IntentSimple:
		result, err = s.analyze(ctx, question, history, false)
	default:
		result, err = s.analyze(ctx, question, history, true)
	}
	if err != nil {
		return s.failure(ctx, sessionID, err)
	}

	if err := s.persist(ctx, sessionID, models.ChatRoleAssistant, result.Answer); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	return result, nil
}

// classify asks the model for the question category. An unparseable
// reply falls back to the strategic path, which degrades gracefully for
// simple questions.
func (s *analystService) classify(ctx context.Context, question string, history []llm.Message) (int, error) {
	reply, err := s.generate(ctx, prompts.BuildIntentPrompt(question, history), nil)
	if err != nil {
		return 0, err
	}
	intent, ok := prompts.ParseIntent(reply)
	if !ok {
		s.logger.Warn("ambiguous intent classification, assuming strategic",
			zap.String("reply", firstLine(reply)))
		return prompts.IntentStrategic, nil
	}
	return intent, nil
}

// converse answers greetings and off-topic questions; no data involved.
func (s *analystService) converse(ctx context.Context, question string, history []llm.Message) (*AskResult, error) {
	reply, err := s.generate(ctx, prompts.BuildGeneralPrompt(question), history)
	if err != nil {
		return nil, err
	}
	return &AskResult{Answer: strings.TrimSpace(reply)}, nil
}

// analyze runs the full data path: snapshot, directive generation,
// local execution, formatting, assembly.
func (s *analystService) analyze(ctx context.Context, question string, history []llm.Message, strategic bool) (*AskResult, error) {
	table, err := s.snapshots.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	metrics := snapshot.ComputeMetrics(table)

	var prompt string
	if strategic {
		prompt = prompts.BuildStrategicPrompt(question, table, metrics, s.snapshotRows)
	} else {
		prompt = prompts.BuildSimplePrompt(question, table, metrics, s.snapshotRows)
	}

	reply, err := s.generate(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	directive, err := analysis.ParseDirective(reply)
	if err != nil {
		return nil, rawReplyError(err, reply)
	}
	program, err := analysis.ParseProgram(directive.Program)
	if err != nil {
		return nil, rawReplyError(err, reply)
	}
	result, err := analysis.Evaluate(ctx, table, program)
	if err != nil {
		return nil, rawReplyError(err, reply)
	}

	formatted := analysis.FormatResult(result, question, directive.Template)
	body := substituteResult(directive.Template, formatted, strategic)
	main, diagnosis, actionPlan := splitSections(body)

	answer := main
	if diagnosis != "" {
		answer += "\n\n" + diagnosisLabel + "\n" + diagnosis
	}
	if actionPlan != "" {
		answer += "\n\n" + actionPlanLabel + "\n" + actionPlan
	}

	return &AskResult{
		Answer:      answer,
		Diagnostico: diagnosis,
		PlanoDeAcao: actionPlan,
		DadosAnalisados: map[string]any{
			"resultado": formatted,
			"metricas":  metrics,
		},
	}, nil
}

// generate calls the model under the configured timeout, retrying
// transient failures.
func (s *analystService) generate(ctx context.Context, instructions string, history []llm.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reply string
	err := retry.DoIfRetryable(callCtx, s.retryCfg, func() error {
		r, genErr := s.client.Generate(callCtx, instructions, history)
		if genErr != nil {
			return genErr
		}
		reply = r
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Timeouts take the apology path rather than a hard 500.
			return "", fmt.Errorf("generation timed out: %w", err)
		}
		return "", fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}
	return reply, nil
}

// failure resolves an internal pipeline error. Collaborator outages
// surface as errors (the handler maps them to 500); everything else
// becomes the fixed apology inside a success envelope. Only the apology
// is persisted, never the broken model reply.
func (s *analystService) failure(ctx context.Context, sessionID string, cause error) (*AskResult, error) {
	if errors.Is(cause, apperrors.ErrUnavailable) {
		return nil, cause
	}

	var replyErr *replyError
	if errors.As(cause, &replyErr) {
		s.logger.Error("analysis pipeline failure",
			zap.String("session_id", sessionID),
			zap.String("raw_reply", replyErr.raw),
			zap.Error(cause))
	} else {
		s.logger.Error("analysis pipeline failure",
			zap.String("session_id", sessionID),
			zap.Error(cause))
	}

	if err := s.persist(ctx, sessionID, models.ChatRoleAssistant, Apology); err != nil {
		return nil, fmt.Errorf("persist apology: %w", err)
	}
	return &AskResult{Answer: Apology}, nil
}

func (s *analystService) loadHistory(ctx context.Context, sessionID string) ([]llm.Message, error) {
	msgs, err := s.chat.History(ctx, sessionID, s.historyTurns)
	if err != nil {
		return nil, err
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out, nil
}

func (s *analystService) persist(ctx context.Context, sessionID string, role models.ChatRole, content string) error {
	return s.chat.SaveMessage(ctx, &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	})
}

// replyError carries the raw model reply alongside the parse or
// execution error so the failure path can log it.
type replyError struct {
	cause error
	raw   string
}

func (e *replyError) Error() string { return e.cause.Error() }

func (e *replyError) Unwrap() error { return e.cause }

func rawReplyError(cause error, raw string) error {
	return &replyError{cause: cause, raw: raw}
}

// substituteResult places the formatted result into the template. When
// the placeholder is missing on the strategic path, the first literal
// "R$ 0,00" stub is used as the anchor; failing that, the result is
// appended.
func substituteResult(template, formatted string, strategic bool) string {
	if strings.Contains(template, analysis.Placeholder) {
		return strings.ReplaceAll(template, analysis.Placeholder, formatted)
	}
	if strategic {
		if idx := strings.Index(template, "R$ 0,00"); idx >= 0 {
			return template[:idx] + formatted + template[idx+len("R$ 0,00"):]
		}
	}
	return template + "\n\n" + formatted
}

// splitSections separates the main answer text from the Diagnóstico and
// Plano de Ação sections, dropping not-applicable bodies.
func splitSections(body string) (main, diagnosis, actionPlan string) {
	main = body

	if idx := strings.Index(main, actionPlanLabel); idx >= 0 {
		actionPlan = strings.TrimSpace(main[idx+len(actionPlanLabel):])
		main = main[:idx]
	}
	if idx := strings.Index(main, diagnosisLabel); idx >= 0 {
		diagnosis = strings.TrimSpace(main[idx+len(diagnosisLabel):])
		main = main[:idx]
	}

	main = strings.TrimSpace(main)
	if isNotApplicable(diagnosis) {
		diagnosis = ""
	}
	if isNotApplicable(actionPlan) {
		actionPlan = ""
	}
	return main, diagnosis, actionPlan
}

func isNotApplicable(s string) bool {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimSuffix(normalized, ".")
	return notApplicable[normalized]
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
