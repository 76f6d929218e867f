package sparse

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

// Index is an in-process BM25 keyword index. Rebuild replaces the whole
// posting state; Query never mutates, so a built index is safe for
// concurrent readers.
type Index struct {
	k1 float64
	b  float64

	chunks []domain.Chunk
	tf     []map[string]int
	df     map[string]int
	docLen []int
	avgLen float64
}

func NewIndex() *Index {
	return &Index{k1: defaultK1, b: defaultB, df: make(map[string]int)}
}

func (idx *Index) Rebuild(chunks []domain.Chunk) {
	idx.chunks = make([]domain.Chunk, len(chunks))
	copy(idx.chunks, chunks)

	idx.tf = make([]map[string]int, len(chunks))
	idx.df = make(map[string]int, 256)
	idx.docLen = make([]int, len(chunks))

	total := 0
	for i, chunk := range chunks {
		tokens := tokenize(chunk.Text)
		// Filename tokens participate so "report" finds report.pdf chunks.
		tokens = append(tokens, tokenize(chunk.DocumentName)...)

		freq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freq[token]++
		}
		idx.tf[i] = freq
		idx.docLen[i] = len(tokens)
		total += len(tokens)

		for token := range freq {
			idx.df[token]++
		}
	}

	if len(chunks) > 0 {
		idx.avgLen = float64(total) / float64(len(chunks))
	}
}

func (idx *Index) Query(text string, k int) []domain.RetrievalCandidate {
	if len(idx.chunks) == 0 || k <= 0 {
		return nil
	}

	queryTokens := tokenize(text)
	if len(queryTokens) == 0 {
		return nil
	}
	queryFreq := make(map[string]int, len(queryTokens))
	for _, token := range queryTokens {
		queryFreq[token]++
	}

	n := float64(len(idx.chunks))
	scored := make([]domain.RetrievalCandidate, 0, 16)
	for i := range idx.chunks {
		var score float64
		for token := range queryFreq {
			tf := idx.tf[i][token]
			if tf == 0 {
				continue
			}
			df := float64(idx.df[token])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - idx.b + idx.b*float64(idx.docLen[i])/idx.avgLen
			score += idf * float64(tf) * (idx.k1 + 1) / (float64(tf) + idx.k1*norm)
		}
		if score > 0 {
			scored = append(scored, domain.RetrievalCandidate{
				Chunk:       idx.chunks[i],
				SparseScore: score,
			})
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].SparseScore != scored[b].SparseScore {
			return scored[a].SparseScore > scored[b].SparseScore
		}
		return scored[a].Chunk.ID < scored[b].Chunk.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
