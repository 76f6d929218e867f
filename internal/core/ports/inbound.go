package ports

import (
	"context"
	"io"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

// QuestionService is the inbound contract for question answering.
type QuestionService interface {
	Ask(ctx context.Context, sessionID, question string, history []domain.ChatMessage) (*domain.Answer, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, sessionID, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// SessionManager is the inbound contract for session lifecycle.
type SessionManager interface {
	Create(ctx context.Context, name string) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
