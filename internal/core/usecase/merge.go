package usecase

import (
	"sort"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/entities"
)

const (
	denseWeight  = 0.7
	sparseWeight = 0.3
)

// MergeCandidates fuses dense and sparse results into one ranked list.
// Scores are min-max normalized per source before weighting so the two
// scales become comparable; a chunk reached by both sources keeps the
// higher combined score. Ordering is deterministic: score descending,
// chunk ID as tiebreak.
func MergeCandidates(dense, sparse []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	normalize(dense, func(c *domain.RetrievalCandidate) *float64 { return &c.DenseScore })
	normalize(sparse, func(c *domain.RetrievalCandidate) *float64 { return &c.SparseScore })

	byID := make(map[string]domain.RetrievalCandidate, len(dense)+len(sparse))
	for _, c := range dense {
		c.Score = denseWeight * c.DenseScore
		merge(byID, c)
	}
	for _, c := range sparse {
		c.Score = sparseWeight * c.SparseScore
		merge(byID, c)
	}

	out := make([]domain.RetrievalCandidate, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ID < out[j].Chunk.ID
	})
	return out
}

func merge(byID map[string]domain.RetrievalCandidate, c domain.RetrievalCandidate) {
	prev, ok := byID[c.Chunk.ID]
	if !ok {
		byID[c.Chunk.ID] = c
		return
	}
	if c.DenseScore > prev.DenseScore {
		prev.DenseScore = c.DenseScore
	}
	if c.SparseScore > prev.SparseScore {
		prev.SparseScore = c.SparseScore
	}
	combined := denseWeight*prev.DenseScore + sparseWeight*prev.SparseScore
	if combined > prev.Score {
		prev.Score = combined
	}
	byID[c.Chunk.ID] = prev
}

func normalize(cands []domain.RetrievalCandidate, field func(*domain.RetrievalCandidate) *float64) {
	if len(cands) == 0 {
		return
	}
	lo, hi := *field(&cands[0]), *field(&cands[0])
	for i := range cands {
		v := *field(&cands[i])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for i := range cands {
		p := field(&cands[i])
		if hi == lo {
			// All candidates scored identically; rank carries no signal,
			// so every one gets full weight.
			*p = 1
			continue
		}
		*p = (*p - lo) / (hi - lo)
	}
}

// FilterNearDuplicates drops candidates whose text is nearly identical to a
// higher-ranked one. Similarity is the Dice coefficient over word bigrams of
// the body text; the entity prefix is stripped first so two chunks with the
// same body but different tag lines still count as duplicates.
func FilterNearDuplicates(cands []domain.RetrievalCandidate, threshold float64) []domain.RetrievalCandidate {
	kept := make([]domain.RetrievalCandidate, 0, len(cands))
	sets := make([]map[string]struct{}, 0, len(cands))
	for _, c := range cands {
		bg := bigrams(entities.StripEntityPrefix(c.Chunk.Text))
		dup := false
		for _, prev := range sets {
			if diceSimilarity(bg, prev) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, c)
		sets = append(sets, bg)
	}
	return kept
}

func bigrams(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	if len(words) == 1 {
		set[words[0]] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(words); i++ {
		set[words[i]+" "+words[i+1]] = struct{}{}
	}
	return set
}

func diceSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	common := 0
	for g := range small {
		if _, ok := large[g]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
