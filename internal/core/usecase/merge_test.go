package usecase

import (
	"testing"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

func TestMergeCandidatesDeduplicatesByChunkID(t *testing.T) {
	dense := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "c1", Text: "alpha"}, DenseScore: 0.9},
		{Chunk: domain.Chunk{ID: "c2", Text: "beta"}, DenseScore: 0.5},
	}
	sparse := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "c2", Text: "beta"}, SparseScore: 4.0},
		{Chunk: domain.Chunk{ID: "c3", Text: "gamma"}, SparseScore: 1.0},
	}

	merged := MergeCandidates(dense, sparse)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged candidates, got %d", len(merged))
	}
	ids := map[string]bool{}
	for _, c := range merged {
		if ids[c.Chunk.ID] {
			t.Fatalf("duplicate chunk id %s in merged output", c.Chunk.ID)
		}
		ids[c.Chunk.ID] = true
	}
}

func TestMergeCandidatesBothSourcesBeatSingleSource(t *testing.T) {
	dense := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "both"}, DenseScore: 0.8},
		{Chunk: domain.Chunk{ID: "dense-only"}, DenseScore: 0.9},
		{Chunk: domain.Chunk{ID: "weak"}, DenseScore: 0.1},
	}
	sparse := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "both"}, SparseScore: 5.0},
		{Chunk: domain.Chunk{ID: "weak"}, SparseScore: 0.5},
	}

	merged := MergeCandidates(dense, sparse)
	if merged[0].Chunk.ID != "both" {
		t.Fatalf("expected chunk reached by both sources first, got %s", merged[0].Chunk.ID)
	}
}

func TestMergeCandidatesDeterministicTieBreak(t *testing.T) {
	dense := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "b"}, DenseScore: 0.5},
		{Chunk: domain.Chunk{ID: "a"}, DenseScore: 0.5},
	}

	merged := MergeCandidates(dense, nil)
	if merged[0].Chunk.ID != "a" || merged[1].Chunk.ID != "b" {
		t.Fatalf("expected tie broken by chunk id, got %s then %s", merged[0].Chunk.ID, merged[1].Chunk.ID)
	}
}

func TestMergeCandidatesUniformScoresGetFullWeight(t *testing.T) {
	sparse := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "x"}, SparseScore: 2.0},
		{Chunk: domain.Chunk{ID: "y"}, SparseScore: 2.0},
	}

	merged := MergeCandidates(nil, sparse)
	for _, c := range merged {
		if c.Score != sparseWeight {
			t.Fatalf("expected uniform sparse score %v, got %v", sparseWeight, c.Score)
		}
	}
}

func TestFilterNearDuplicatesDropsRepeatedText(t *testing.T) {
	cands := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "c1", Text: "the quarterly budget was approved by the board in march"}, Score: 0.9},
		{Chunk: domain.Chunk{ID: "c2", Text: "the quarterly budget was approved by the board in march 2026"}, Score: 0.8},
		{Chunk: domain.Chunk{ID: "c3", Text: "staffing plans moved to the second phase of the rollout"}, Score: 0.7},
	}

	kept := FilterNearDuplicates(cands, 0.82)
	if len(kept) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(kept))
	}
	if kept[0].Chunk.ID != "c1" || kept[1].Chunk.ID != "c3" {
		t.Fatalf("expected higher-ranked duplicate kept, got %s and %s", kept[0].Chunk.ID, kept[1].Chunk.ID)
	}
}

func TestFilterNearDuplicatesKeepsDistinctText(t *testing.T) {
	cands := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "c1", Text: "invoice totals for the first quarter"}},
		{Chunk: domain.Chunk{ID: "c2", Text: "site access procedures for contractors"}},
	}
	if kept := FilterNearDuplicates(cands, 0.82); len(kept) != 2 {
		t.Fatalf("expected both distinct candidates kept, got %d", len(kept))
	}
}

func TestFilterNearDuplicatesIgnoresEntityPrefix(t *testing.T) {
	body := "the quarterly budget was approved by the board in march"
	cands := []domain.RetrievalCandidate{
		{Chunk: domain.Chunk{ID: "c1", Text: "[Projects: Alpha Rollout Project]\n\n" + body}, Score: 0.9},
		{Chunk: domain.Chunk{ID: "c2", Text: "[Dates: march | People: Dana Reyes]\n\n" + body}, Score: 0.8},
	}

	kept := FilterNearDuplicates(cands, 0.82)
	if len(kept) != 1 || kept[0].Chunk.ID != "c1" {
		t.Fatalf("identical bodies behind different tag lines must dedup, got %d survivors", len(kept))
	}
}

func TestDiceSimilarityBounds(t *testing.T) {
	a := bigrams("one two three")
	if got := diceSimilarity(a, a); got != 1 {
		t.Fatalf("identical sets should score 1, got %v", got)
	}
	b := bigrams("four five six")
	if got := diceSimilarity(a, b); got != 0 {
		t.Fatalf("disjoint sets should score 0, got %v", got)
	}
}
