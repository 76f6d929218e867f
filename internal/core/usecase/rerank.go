package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

const maxRerankCandidates = 50

// Rerank scores the top merged candidates against the question with the
// cross encoder and reorders them by that score. Candidates past the cap
// keep their merged order behind the reranked head. A cross encoder failure
// is logged and the merged order survives untouched.
func Rerank(ctx context.Context, log *slog.Logger, encoder ports.CrossEncoder, question string, cands []domain.RetrievalCandidate) []domain.RetrievalCandidate {
	if len(cands) == 0 || encoder == nil {
		return cands
	}

	topN := len(cands)
	if topN > maxRerankCandidates {
		topN = maxRerankCandidates
	}

	head := make([]domain.RetrievalCandidate, topN)
	copy(head, cands[:topN])

	texts := make([]string, topN)
	for i, c := range head {
		texts[i] = c.Chunk.Text
	}

	scores, err := encoder.Score(ctx, question, texts)
	if err != nil || len(scores) != topN {
		log.Warn("rerank_skipped", slog.Int("candidates", topN), slog.Any("error", err))
		return cands
	}

	for i := range head {
		head[i].RerankScore = scores[i]
	}
	sort.SliceStable(head, func(i, j int) bool {
		if head[i].RerankScore != head[j].RerankScore {
			return head[i].RerankScore > head[j].RerankScore
		}
		return head[i].Chunk.ID < head[j].Chunk.ID
	})

	if topN == len(cands) {
		return head
	}
	out := make([]domain.RetrievalCandidate, 0, len(cands))
	out = append(out, head...)
	out = append(out, cands[topN:]...)
	return out
}
