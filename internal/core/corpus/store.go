package corpus

import (
	"context"
	"fmt"
	"sync"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

// Store is the session-scoped corpus registry. Chunks are persisted by the
// worker; the store hydrates a session's in-memory corpus lazily and
// refreshes it when the persisted chunk count has grown past what is loaded.
type Store struct {
	dense     ports.DenseIndex
	newSparse func() ports.KeywordIndex
	chunkRepo ports.ChunkRepository

	mu      sync.RWMutex
	corpora map[string]*Corpus
}

func NewStore(dense ports.DenseIndex, newSparse func() ports.KeywordIndex, chunkRepo ports.ChunkRepository) *Store {
	return &Store{
		dense:     dense,
		newSparse: newSparse,
		chunkRepo: chunkRepo,
		corpora:   make(map[string]*Corpus),
	}
}

func (s *Store) getOrCreate(sessionID string) *Corpus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.corpora[sessionID]; ok {
		return c
	}
	c := &Corpus{
		SessionID: sessionID,
		dense:     s.dense,
		newSparse: s.newSparse,
	}
	s.corpora[sessionID] = c
	return c
}

// Sync returns the session corpus, loading any chunks persisted since the
// last call. A session with no persisted chunks yields an empty corpus.
func (s *Store) Sync(ctx context.Context, sessionID string) (*Corpus, error) {
	c := s.getOrCreate(sessionID)

	persisted, err := s.chunkRepo.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count persisted chunks: %w", err)
	}
	if persisted <= c.Len() {
		return c, nil
	}

	chunks, vectors, err := s.chunkRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load persisted chunks: %w", err)
	}
	if err := c.Reload(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("rebuild session corpus: %w", err)
	}
	return c, nil
}

// Delete removes a session's corpus, its dense collection, and the
// persisted chunks.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, existed := s.corpora[sessionID]
	delete(s.corpora, sessionID)
	s.mu.Unlock()

	if err := s.chunkRepo.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if !existed {
		return nil
	}
	return s.dense.Drop(ctx, sessionID)
}
