package dense

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

// Index is an embedded vector store with one collection per corpus.
// Inserts are incremental; existing points survive corpus growth.
type Index struct {
	db       *chromem.DB
	embedder ports.Embedder

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

func NewIndex(embedder ports.Embedder) *Index {
	return &Index{
		db:          chromem.NewDB(),
		embedder:    embedder,
		collections: make(map[string]*chromem.Collection),
	}
}

func (i *Index) Upsert(ctx context.Context, corpusID string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("dense upsert: vectors/chunks mismatch: %d/%d", len(vectors), len(chunks))
	}

	collection, err := i.collection(corpusID)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for idx, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Embedding: vectors[idx],
			Metadata: map[string]string{
				"document_id":    chunk.DocumentID,
				"document_name":  chunk.DocumentName,
				"sequence_index": strconv.Itoa(chunk.SequenceIndex),
			},
		})
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("dense upsert: add documents: %w", err)
	}
	return nil
}

func (i *Index) Query(ctx context.Context, corpusID string, vector []float32, k int, documentFilter string) ([]domain.RetrievalCandidate, error) {
	collection, err := i.collection(corpusID)
	if err != nil {
		return nil, err
	}

	count := collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	var where map[string]string
	if documentFilter != "" {
		where = map[string]string{"document_name": documentFilter}
	}

	results, err := collection.QueryEmbedding(ctx, vector, k, where, nil)
	if err != nil {
		// A filter matching zero points is an empty result, not a failure.
		if where != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("dense query: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, domain.RetrievalCandidate{
			Chunk: domain.Chunk{
				ID:           result.ID,
				Text:         result.Content,
				DocumentID:   result.Metadata["document_id"],
				DocumentName: result.Metadata["document_name"],
			},
			DenseScore: float64(result.Similarity),
		})
	}
	return candidates, nil
}

func (i *Index) Drop(_ context.Context, corpusID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	name := collectionName(corpusID)
	delete(i.collections, name)
	if err := i.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("dense drop: %w", err)
	}
	return nil
}

func (i *Index) collection(corpusID string) (*chromem.Collection, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	name := collectionName(corpusID)
	if collection, ok := i.collections[name]; ok {
		return collection, nil
	}

	collection, err := i.db.GetOrCreateCollection(name, nil, i.embeddingFunc())
	if err != nil {
		return nil, fmt.Errorf("dense collection %s: %w", name, err)
	}
	i.collections[name] = collection
	return collection, nil
}

func (i *Index) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return i.embedder.EmbedQuery(ctx, text)
	}
}

func collectionName(corpusID string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, corpusID)
	return "corpus-" + sanitized
}
