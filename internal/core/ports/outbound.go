package ports

import (
	"context"
	"io"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CrossEncoder scores each text against the query, in [0,1].
type CrossEncoder interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// DenseIndex is the vector similarity index. Collections are keyed by corpus
// so sessions never see each other's chunks. Insertion is incremental.
type DenseIndex interface {
	Upsert(ctx context.Context, corpusID string, chunks []domain.Chunk, vectors [][]float32) error
	Query(ctx context.Context, corpusID string, vector []float32, k int, documentFilter string) ([]domain.RetrievalCandidate, error)
	Drop(ctx context.Context, corpusID string) error
}

// KeywordIndex is the sparse term-frequency index, rebuilt from the full
// chunk set on corpus growth.
type KeywordIndex interface {
	Rebuild(chunks []domain.Chunk)
	Query(text string, k int) []domain.RetrievalCandidate
}

// LanguageModel generates text from a prompt. Implementations are tried in
// order by the pipeline's fallback chain.
type LanguageModel interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits extracted text into raw segments.
type Chunker interface {
	Split(text string) []string
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// ChunkRepository persists enriched chunks with their embeddings. The worker
// writes them; the api hydrates session corpora from them.
type ChunkRepository interface {
	SaveChunks(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, [][]float32, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	MarkReady(ctx context.Context, id string, chunkCount int) error
}

// SessionRepository persists sessions and their chat messages.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, message domain.ChatMessage) error
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}
