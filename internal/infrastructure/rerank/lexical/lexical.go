// Package lexical is the built-in cross encoder: a token-overlap scorer that
// needs no external model service. It trades accuracy for zero deployment
// cost and keeps the rerank stage functional out of the box.
package lexical

import (
	"context"
	"strings"
	"unicode"
)

type Scorer struct{}

func New() *Scorer {
	return &Scorer{}
}

// Score rates each text against the query in [0,1]: weighted coverage of
// query tokens in the text, with a bonus when the query appears as a phrase.
func (s *Scorer) Score(_ context.Context, query string, texts []string) ([]float64, error) {
	queryTokens := toTokenSet(query)
	phrase := strings.ToLower(strings.TrimSpace(query))

	scores := make([]float64, len(texts))
	for i, text := range texts {
		overlap := tokenOverlap(queryTokens, toTokenSet(text))
		score := 0.9 * overlap
		if phrase != "" && strings.Contains(strings.ToLower(text), phrase) {
			score += 0.1
		}
		if score > 1 {
			score = 1
		}
		scores[i] = score
	}
	return scores, nil
}

func tokenOverlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := chunk[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{}, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}
