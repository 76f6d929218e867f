package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

type IngestDocumentUseCase struct {
	documents ports.DocumentRepository
	sessions  ports.SessionRepository
	storage   ports.ObjectStorage
	queue     ports.MessageQueue
}

func NewIngestDocumentUseCase(
	documents ports.DocumentRepository,
	sessions ports.SessionRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		documents: documents,
		sessions:  sessions,
		storage:   storage,
		queue:     queue,
	}
}

// Upload stores the raw document, records it against the session, and
// publishes the event that triggers asynchronous processing.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	sessionID, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if _, err := uc.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		SessionID:   sessionID,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
