package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/corpus"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/prompts"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// fakeDense returns every upserted chunk with a mildly decaying score.
type fakeDense struct {
	bySession map[string][]domain.Chunk
}

func newFakeDense() *fakeDense {
	return &fakeDense{bySession: make(map[string][]domain.Chunk)}
}

func (f *fakeDense) Upsert(_ context.Context, corpusID string, chunks []domain.Chunk, _ [][]float32) error {
	f.bySession[corpusID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (f *fakeDense) Query(_ context.Context, corpusID string, _ []float32, k int, documentFilter string) ([]domain.RetrievalCandidate, error) {
	var out []domain.RetrievalCandidate
	for i, chunk := range f.bySession[corpusID] {
		if documentFilter != "" && chunk.DocumentName != documentFilter {
			continue
		}
		out = append(out, domain.RetrievalCandidate{
			Chunk:      chunk,
			DenseScore: 1 - float64(i)*0.05,
		})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func (f *fakeDense) Drop(_ context.Context, corpusID string) error {
	delete(f.bySession, corpusID)
	return nil
}

// fakeSparse scores by shared lowercase terms between query and chunk text.
type fakeSparse struct {
	chunks []domain.Chunk
}

func (f *fakeSparse) Rebuild(chunks []domain.Chunk) {
	f.chunks = append([]domain.Chunk(nil), chunks...)
}

func (f *fakeSparse) Query(text string, k int) []domain.RetrievalCandidate {
	terms := strings.Fields(strings.ToLower(text))
	var out []domain.RetrievalCandidate
	for _, chunk := range f.chunks {
		lower := strings.ToLower(chunk.Text)
		score := 0.0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > 0 {
			out = append(out, domain.RetrievalCandidate{Chunk: chunk, SparseScore: score})
		}
		if len(out) >= k {
			break
		}
	}
	return out
}

type fakeChunkRepo struct {
	chunks  map[string][]domain.Chunk
	vectors map[string][][]float32
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{
		chunks:  make(map[string][]domain.Chunk),
		vectors: make(map[string][][]float32),
	}
}

func (f *fakeChunkRepo) SaveChunks(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	for i, chunk := range chunks {
		f.chunks[chunk.SessionID] = append(f.chunks[chunk.SessionID], chunk)
		f.vectors[chunk.SessionID] = append(f.vectors[chunk.SessionID], vectors[i])
	}
	return nil
}

func (f *fakeChunkRepo) ListBySession(_ context.Context, sessionID string) ([]domain.Chunk, [][]float32, error) {
	return f.chunks[sessionID], f.vectors[sessionID], nil
}

func (f *fakeChunkRepo) CountBySession(_ context.Context, sessionID string) (int, error) {
	return len(f.chunks[sessionID]), nil
}

func (f *fakeChunkRepo) DeleteBySession(_ context.Context, sessionID string) error {
	delete(f.chunks, sessionID)
	delete(f.vectors, sessionID)
	return nil
}

type fakeSessions struct {
	messages  []domain.ChatMessage
	appendErr error
}

func (f *fakeSessions) CreateSession(context.Context, *domain.Session) error { return nil }
func (f *fakeSessions) GetSession(context.Context, string) (*domain.Session, error) {
	return &domain.Session{ID: "s1"}, nil
}
func (f *fakeSessions) DeleteSession(context.Context, string) error { return nil }
func (f *fakeSessions) AppendMessage(_ context.Context, m domain.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, m)
	return nil
}
func (f *fakeSessions) ListRecentMessages(context.Context, string, int) ([]domain.ChatMessage, error) {
	return f.messages, nil
}

type fakeModel struct {
	name   string
	answer string
	err    error
	calls  int
}

func (f *fakeModel) Name() string { return f.name }
func (f *fakeModel) Generate(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func seededStore(t *testing.T, sessionID string, chunks []domain.Chunk) (*corpus.Store, *fakeChunkRepo) {
	t.Helper()
	repo := newFakeChunkRepo()
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		chunks[i].SessionID = sessionID
		vectors[i] = []float32{1, 0, 0}
	}
	if err := repo.SaveChunks(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("seed chunks: %v", err)
	}
	store := corpus.NewStore(newFakeDense(), func() ports.KeywordIndex { return &fakeSparse{} }, repo)
	return store, repo
}

func newTestPipeline(store *corpus.Store, sessions ports.SessionRepository, models ...ports.LanguageModel) *AskPipeline {
	retriever := NewRetriever(fakeEmbedder{}, &stubEncoder{}, testLogger(), RetrievalTunables{})
	return NewAskPipeline(sessions, store, retriever, models, prompts.Default(), testLogger(), 0)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	store, _ := seededStore(t, "s1", nil)
	p := newTestPipeline(store, &fakeSessions{}, &fakeModel{name: "m", answer: "ok"})

	_, err := p.Ask(context.Background(), "s1", "   ", nil)
	if err == nil {
		t.Fatalf("expected error for empty question")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestAskWithoutDocumentsReturnsGuidance(t *testing.T) {
	store, _ := seededStore(t, "s1", nil)
	sessions := &fakeSessions{}
	p := newTestPipeline(store, sessions, &fakeModel{name: "m", answer: "ok"})

	ans, err := p.Ask(context.Background(), "s1", "What is the budget?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != noDocumentsAnswer {
		t.Fatalf("expected no-documents guidance, got %q", ans.Text)
	}
	if len(sessions.messages) != 2 {
		t.Fatalf("expected both turns recorded, got %d", len(sessions.messages))
	}
}

func TestAskAnswersFromDocuments(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "d1-chunk-0", DocumentID: "d1", DocumentName: "plan.pdf", SequenceIndex: 0,
			Text: "The rollout budget is 40000 euro for the first phase."},
		{ID: "d1-chunk-1", DocumentID: "d1", DocumentName: "plan.pdf", SequenceIndex: 1,
			Text: "Phase two starts after the audit completes."},
	}
	store, _ := seededStore(t, "s1", chunks)
	sessions := &fakeSessions{}
	model := &fakeModel{name: "m", answer: "The budget is 40000 euro (plan.pdf)."}
	p := newTestPipeline(store, sessions, model)

	ans, err := p.Ask(context.Background(), "s1", "What is the rollout budget?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ans.Text, "40000") {
		t.Fatalf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Citations) != 1 || ans.Citations[0] != "plan.pdf" {
		t.Fatalf("expected plan.pdf cited, got %v", ans.Citations)
	}
	if model.calls != 1 {
		t.Fatalf("expected one generation call, got %d", model.calls)
	}
	if len(sessions.messages) != 2 {
		t.Fatalf("expected question and answer recorded, got %d", len(sessions.messages))
	}
	if sessions.messages[0].Role != domain.RoleUser || sessions.messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", sessions.messages)
	}
}

func TestAskFallsBackToNextModel(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "d1-chunk-0", DocumentID: "d1", DocumentName: "plan.pdf", SequenceIndex: 0,
			Text: "The rollout budget is 40000 euro."},
	}
	store, _ := seededStore(t, "s1", chunks)
	broken := &fakeModel{name: "primary", err: errors.New("connection refused")}
	healthy := &fakeModel{name: "backup", answer: "The budget is 40000 euro."}
	p := newTestPipeline(store, &fakeSessions{}, broken, healthy)

	ans, err := p.Ask(context.Background(), "s1", "What is the rollout budget?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(ans.Text, "40000") {
		t.Fatalf("expected answer from backup model, got %q", ans.Text)
	}
	if broken.calls != 1 || healthy.calls != 1 {
		t.Fatalf("expected both models tried once, got %d and %d", broken.calls, healthy.calls)
	}
}

func TestAskAllModelsDownDegradesGracefully(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "d1-chunk-0", DocumentID: "d1", DocumentName: "plan.pdf", SequenceIndex: 0,
			Text: "The rollout budget is 40000 euro."},
	}
	store, _ := seededStore(t, "s1", chunks)
	broken := &fakeModel{name: "primary", err: errors.New("connection refused")}
	p := newTestPipeline(store, &fakeSessions{}, broken)

	ans, err := p.Ask(context.Background(), "s1", "What is the rollout budget?", nil)
	if err != nil {
		t.Fatalf("expected degraded answer, not error: %v", err)
	}
	if ans.Text != degradedAnswer {
		t.Fatalf("expected degraded answer, got %q", ans.Text)
	}
	if ans.Warning == "" {
		t.Fatalf("expected warning on degraded answer")
	}
}

func TestAskConversationalUsesModel(t *testing.T) {
	store, _ := seededStore(t, "s1", nil)
	model := &fakeModel{name: "m", answer: "Hello! Upload a document to get started."}
	p := newTestPipeline(store, &fakeSessions{}, model)

	ans, err := p.Ask(context.Background(), "s1", "hello", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != model.answer {
		t.Fatalf("unexpected conversational answer: %q", ans.Text)
	}
	if len(ans.Citations) != 0 {
		t.Fatalf("conversational answers carry no citations, got %v", ans.Citations)
	}
}

func TestAskConversationalFallsBackWhenModelsDown(t *testing.T) {
	store, _ := seededStore(t, "s1", nil)
	p := newTestPipeline(store, &fakeSessions{}, &fakeModel{name: "m", err: errors.New("down")})

	ans, err := p.Ask(context.Background(), "s1", "hello", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != conversationalFallback {
		t.Fatalf("expected canned conversational reply, got %q", ans.Text)
	}
}

func TestAskMultiIntentCombinesSections(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "d1-chunk-0", DocumentID: "d1", DocumentName: "alpha.pdf", SequenceIndex: 0,
			Text: "The timeline for Alpha runs from March to June."},
		{ID: "d2-chunk-0", DocumentID: "d2", DocumentName: "beta.pdf", SequenceIndex: 0,
			Text: "The objective of Beta is full migration."},
	}
	store, _ := seededStore(t, "s1", chunks)
	model := &fakeModel{name: "m", answer: "Answer from the documents."}
	p := newTestPipeline(store, &fakeSessions{}, model)

	ans, err := p.Ask(context.Background(), "s1",
		"What is the timeline for Alpha and the objective of Beta?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(ans.Text, "**") != 4 {
		t.Fatalf("expected two bolded sub-question headers, got %q", ans.Text)
	}
	if model.calls != 2 {
		t.Fatalf("expected one generation per sub-question, got %d", model.calls)
	}
	// Sections appear in question order regardless of goroutine completion.
	alphaIdx := strings.Index(ans.Text, "timeline for Alpha")
	betaIdx := strings.Index(ans.Text, "objective of Beta")
	if alphaIdx < 0 || betaIdx < 0 || alphaIdx > betaIdx {
		t.Fatalf("sections out of order:\n%s", ans.Text)
	}
}

func TestAskHistoryWriteFailureDoesNotFailRequest(t *testing.T) {
	store, _ := seededStore(t, "s1", nil)
	sessions := &fakeSessions{appendErr: errors.New("db down")}
	p := newTestPipeline(store, sessions, &fakeModel{name: "m", answer: "ok"})

	if _, err := p.Ask(context.Background(), "s1", "What is the budget?", nil); err != nil {
		t.Fatalf("history failure must not fail the request: %v", err)
	}
}
