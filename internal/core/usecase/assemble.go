package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

const (
	semanticTokenBudget   = 3500
	exhaustiveTokenBudget = 10500
	minChunksPerDocument  = 2
)

// AssembleContext turns ranked candidates into a token-budgeted context
// grouped by source document. Selection runs in two passes so one dominant
// document cannot crowd the rest out: first up to two chunks per document in
// document order, then the remaining budget round-robins across documents by
// candidate score. A document that made it into the context always keeps at
// least one chunk.
func AssembleContext(cands []domain.RetrievalCandidate, strategy domain.RetrievalStrategy) domain.AssembledContext {
	budget := semanticTokenBudget
	if strategy == domain.StrategyExhaustive {
		budget = exhaustiveTokenBudget
	}

	ctx := domain.AssembledContext{Strategy: strategy}
	if len(cands) == 0 {
		return ctx
	}

	byDoc := make(map[string][]domain.RetrievalCandidate)
	var docOrder []string
	for _, c := range cands {
		name := c.Chunk.DocumentName
		if _, ok := byDoc[name]; !ok {
			docOrder = append(docOrder, name)
		}
		byDoc[name] = append(byDoc[name], c)
	}

	// Documents are visited by descending average candidate score so the
	// strongest source leads the context.
	sort.SliceStable(docOrder, func(i, j int) bool {
		ai, aj := avgScore(byDoc[docOrder[i]]), avgScore(byDoc[docOrder[j]])
		if ai != aj {
			return ai > aj
		}
		return docOrder[i] < docOrder[j]
	})

	selected := make(map[string][]domain.RetrievalCandidate, len(docOrder))
	cursor := make(map[string]int, len(docOrder))
	spent := 0

	take := func(doc string) bool {
		pool := byDoc[doc]
		i := cursor[doc]
		if i >= len(pool) {
			return false
		}
		cost := approxTokens(pool[i].Chunk.Text)
		if spent+cost > budget && !(len(selected[doc]) == 0 && spent == 0) {
			// A first chunk still enters even when it alone exceeds the
			// budget, otherwise the context would be empty.
			cursor[doc] = len(pool)
			return false
		}
		selected[doc] = append(selected[doc], pool[i])
		cursor[doc] = i + 1
		spent += cost
		return true
	}

	// Pass one: minimum quota per document.
	for _, doc := range docOrder {
		for n := 0; n < minChunksPerDocument; n++ {
			if !take(doc) {
				break
			}
		}
	}

	// Pass two: round-robin until the budget or the candidates run out.
	for {
		progressed := false
		for _, doc := range docOrder {
			if take(doc) {
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	var b strings.Builder
	for _, doc := range docOrder {
		picks := selected[doc]
		if len(picks) == 0 {
			continue
		}
		// Within a document, chunks read in their source order.
		sort.SliceStable(picks, func(i, j int) bool {
			return picks[i].Chunk.SequenceIndex < picks[j].Chunk.SequenceIndex
		})

		group := domain.DocumentGroup{DocumentName: doc}
		fmt.Fprintf(&b, "--- DOCUMENT: %s ---\n", doc)
		for _, c := range picks {
			fmt.Fprintf(&b, "[Chunk %d] %s\n", c.Chunk.SequenceIndex+1, c.Chunk.Text)
			group.Entries = append(group.Entries, domain.ContextEntry{Chunk: c.Chunk, Score: c.FinalScore()})
			ctx.Chunks = append(ctx.Chunks, c.Chunk)
		}
		b.WriteString("\n")
		ctx.Groups = append(ctx.Groups, group)
	}

	ctx.Text = strings.TrimRight(b.String(), "\n")
	ctx.TokenCount = spent
	return ctx
}

func avgScore(cands []domain.RetrievalCandidate) float64 {
	if len(cands) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cands {
		sum += c.FinalScore()
	}
	return sum / float64(len(cands))
}
