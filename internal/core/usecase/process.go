package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/entities"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	chunkRepo ports.ChunkRepository
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	chunkRepo ports.ChunkRepository,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		chunkRepo: chunkRepo,
	}
}

// ProcessByID runs the ingestion pipeline for one uploaded document:
// extract, split, tag entities, embed, and add to the session corpus. Any
// step failure marks the document failed with the error message.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	chunkCount, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.MarkReady(ctx, documentID, chunkCount); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("fetch document by id: %w", err)
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return 0, err
	}

	segments := uc.chunker.Split(text)
	if len(segments) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}

	chunks := make([]domain.Chunk, len(segments))
	texts := make([]string, len(segments))
	for i, segment := range segments {
		chunks[i] = entities.Enrich(segment, entities.SourceMeta{
			SessionID:     doc.SessionID,
			DocumentID:    doc.ID,
			DocumentName:  doc.Filename,
			DocumentPath:  doc.StoragePath,
			SequenceIndex: i,
		})
		texts[i] = chunks[i].Text
	}

	vectors, err := uc.embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	if err := uc.chunkRepo.SaveChunks(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("persist chunks: %w", err)
	}
	return len(chunks), nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(texts)),
		)
	}
	return vectors, nil
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
