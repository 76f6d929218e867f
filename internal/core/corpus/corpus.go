package corpus

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

// Corpus owns the chunks of one session together with the sparse index built
// over them and the session's dense collection. Reloads are serialized by
// ingestMu; readers always observe either the pre- or post-reload state
// because the chunk slice and sparse index are swapped atomically under mu.
type Corpus struct {
	SessionID string

	dense     ports.DenseIndex
	newSparse func() ports.KeywordIndex

	ingestMu sync.Mutex

	mu     sync.RWMutex
	chunks []domain.Chunk
	byID   map[string]domain.Chunk
	sparse ports.KeywordIndex
}

// Reload replaces the corpus content with the full persisted chunk set:
// upsert into the dense index (existing IDs overwrite in place), rebuild of
// the sparse index, then an atomic swap of the chunk slice.
func (c *Corpus) Reload(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}

	c.ingestMu.Lock()
	defer c.ingestMu.Unlock()

	if err := c.dense.Upsert(ctx, c.SessionID, chunks, vectors); err != nil {
		return fmt.Errorf("corpus %s: %w", c.SessionID, err)
	}

	byID := make(map[string]domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}

	sparse := c.newSparse()
	sparse.Rebuild(chunks)

	c.mu.Lock()
	c.chunks = chunks
	c.byID = byID
	c.sparse = sparse
	c.mu.Unlock()

	return nil
}

// SearchDense queries the session's dense collection and hydrates results
// with the full stored chunk (entities, pages, raw text).
func (c *Corpus) SearchDense(ctx context.Context, vector []float32, k int, documentFilter string) ([]domain.RetrievalCandidate, error) {
	candidates, err := c.dense.Query(ctx, c.SessionID, vector, k, documentFilter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	hydrated := make([]domain.RetrievalCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if full, ok := c.byID[candidate.Chunk.ID]; ok {
			candidate.Chunk = full
		}
		hydrated = append(hydrated, candidate)
	}
	return hydrated, nil
}

func (c *Corpus) SearchSparse(text string, k int) []domain.RetrievalCandidate {
	c.mu.RLock()
	sparse := c.sparse
	c.mu.RUnlock()

	if sparse == nil {
		return nil
	}
	return sparse.Query(text, k)
}

// ChunksWhere returns up to ceiling chunks satisfying the predicate, in
// ingestion order.
func (c *Corpus) ChunksWhere(pred func(domain.Chunk) bool, ceiling int) []domain.Chunk {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Chunk
	for _, chunk := range c.chunks {
		if pred != nil && !pred(chunk) {
			continue
		}
		out = append(out, chunk)
		if ceiling > 0 && len(out) >= ceiling {
			break
		}
	}
	return out
}

func (c *Corpus) DocumentNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var names []string
	for _, chunk := range c.chunks {
		if _, ok := seen[chunk.DocumentName]; ok {
			continue
		}
		seen[chunk.DocumentName] = struct{}{}
		names = append(names, chunk.DocumentName)
	}
	sort.Strings(names)
	return names
}

func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks)
}
