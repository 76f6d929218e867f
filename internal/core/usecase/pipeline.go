package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/corpus"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/prompts"
)

// pipelineState names the stages a question passes through, for logging.
type pipelineState string

const (
	stateUnderstanding pipelineState = "understanding"
	stateDecomposing   pipelineState = "decomposing"
	stateRetrieving    pipelineState = "retrieving"
	stateSynthesizing  pipelineState = "synthesizing"
	stateValidating    pipelineState = "validating"
	stateDone          pipelineState = "done"
)

const defaultGenerateTimeout = 90 * time.Second

const noDocumentsAnswer = "No documents have been uploaded to this session yet. Upload a document first, then ask your question again."

const degradedAnswer = "The answer service is temporarily unavailable. Your documents are safe; please try again in a moment."

const conversationalFallback = "Hello! Upload a document and I can answer questions about it."

// AskPipeline is the question-answering service: it understands the
// question, decomposes it, retrieves per sub-question, synthesizes with the
// first healthy language model, validates, and records both turns in the
// session history.
type AskPipeline struct {
	sessions  ports.SessionRepository
	corpora   *corpus.Store
	retriever *Retriever
	models    []ports.LanguageModel
	prompts   prompts.Set
	log       *slog.Logger

	generateTimeout time.Duration
}

func NewAskPipeline(
	sessions ports.SessionRepository,
	corpora *corpus.Store,
	retriever *Retriever,
	models []ports.LanguageModel,
	promptSet prompts.Set,
	log *slog.Logger,
	generateTimeout time.Duration,
) *AskPipeline {
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	return &AskPipeline{
		sessions:        sessions,
		corpora:         corpora,
		retriever:       retriever,
		models:          models,
		prompts:         promptSet,
		log:             log,
		generateTimeout: generateTimeout,
	}
}

func (p *AskPipeline) Ask(ctx context.Context, sessionID, question string, history []domain.ChatMessage) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", fmt.Errorf("empty question"))
	}

	log := p.log.With(slog.String("session_id", sessionID))
	started := time.Now()

	log.Debug("pipeline_state", slog.String("state", string(stateUnderstanding)))
	analysis := Understand(question, history)

	var answer *domain.Answer
	switch {
	case analysis.Conversational:
		answer = p.converse(ctx, log, question)
	default:
		var err error
		answer, err = p.answerFromDocuments(ctx, log, sessionID, analysis)
		if err != nil {
			return nil, err
		}
	}

	p.recordTurns(ctx, log, sessionID, question, answer)

	log.Info("question_answered",
		slog.String("state", string(stateDone)),
		slog.String("question_type", string(analysis.Type)),
		slog.Bool("multi_intent", analysis.MultiIntent),
		slog.Bool("conversational", analysis.Conversational),
		slog.Duration("elapsed", time.Since(started)))
	return answer, nil
}

func (p *AskPipeline) answerFromDocuments(ctx context.Context, log *slog.Logger, sessionID string, analysis domain.QueryAnalysis) (*domain.Answer, error) {
	c, err := p.corpora.Sync(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sync session corpus: %w", err)
	}
	if c.Len() == 0 {
		return &domain.Answer{Text: noDocumentsAnswer}, nil
	}

	log.Debug("pipeline_state", slog.String("state", string(stateDecomposing)))
	subs := Decompose(analysis.Rewritten, analysis)
	log.Debug("sub_questions", slog.Int("count", len(subs)))

	answers := make([]domain.Answer, len(subs))
	errs := make([]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub domain.SubQuestion) {
			defer wg.Done()
			answers[i], errs[i] = p.answerSubQuestion(ctx, log, c, sub)
		}(i, sub)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	combined := combineAnswers(subs, answers)
	return &combined, nil
}

func (p *AskPipeline) answerSubQuestion(ctx context.Context, log *slog.Logger, c *corpus.Corpus, sub domain.SubQuestion) (domain.Answer, error) {
	log.Debug("pipeline_state",
		slog.String("state", string(stateRetrieving)),
		slog.String("strategy", string(sub.Strategy)),
		slog.String("sub_question", sub.Text))

	assembled, err := p.retriever.Retrieve(ctx, c, sub)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	if assembled.Empty() {
		ans := domain.Answer{Text: fmt.Sprintf("I could not find anything in the uploaded documents relevant to: %s", sub.Text)}
		if assembled.FilterMiss != "" {
			ans.AppendWarning(fmt.Sprintf("The requested document %q was not found in this session.", assembled.FilterMiss))
		}
		return ans, nil
	}

	log.Debug("pipeline_state",
		slog.String("state", string(stateSynthesizing)),
		slog.Int("context_chunks", len(assembled.Chunks)),
		slog.Int("context_tokens", assembled.TokenCount))

	text, genErr := p.generate(ctx, log, buildPrompt(p.prompts, sub, assembled))
	if genErr != nil {
		ans := domain.Answer{Text: degradedAnswer}
		ans.AppendWarning("No language model could be reached.")
		return ans, nil
	}

	ans := domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: extractCitations(text, assembled),
	}

	log.Debug("pipeline_state", slog.String("state", string(stateValidating)))
	ans = ValidateAnswer(log, sub, assembled, ans, len(c.DocumentNames()))
	return ans, nil
}

func (p *AskPipeline) converse(ctx context.Context, log *slog.Logger, message string) *domain.Answer {
	text, err := p.generate(ctx, log, fmt.Sprintf(p.prompts.Conversation, message))
	if err != nil {
		text = conversationalFallback
	}
	return &domain.Answer{Text: strings.TrimSpace(text)}
}

// generate tries each configured model in order with a per-call timeout and
// returns the first success.
func (p *AskPipeline) generate(ctx context.Context, log *slog.Logger, prompt string) (string, error) {
	var lastErr error
	for _, model := range p.models {
		callCtx, cancel := context.WithTimeout(ctx, p.generateTimeout)
		text, err := model.Generate(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Warn("model_fallback",
			slog.String("model", model.Name()),
			slog.String("error", err.Error()))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no language models configured")
	}
	return "", domain.WrapError(domain.ErrProviderUnavailable, "generate", lastErr)
}

// recordTurns persists the user question and assistant answer. History
// write failures do not fail the request.
func (p *AskPipeline) recordTurns(ctx context.Context, log *slog.Logger, sessionID, question string, answer *domain.Answer) {
	turns := []domain.ChatMessage{
		{ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleUser, Content: question},
		{ID: uuid.NewString(), SessionID: sessionID, Role: domain.RoleAssistant, Content: answer.Text},
	}
	for _, turn := range turns {
		if err := p.sessions.AppendMessage(ctx, turn); err != nil {
			log.Warn("history_append_failed", slog.String("error", err.Error()))
			return
		}
	}
}
