package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/corpus"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

// RetrievalTunables collects every knob of the retrieval stage. Zero values
// are replaced by the defaults below so a partially configured struct still
// behaves.
type RetrievalTunables struct {
	DenseK                 int
	SparseK                int
	KeepSemantic           int
	ExhaustiveCeiling      int
	DupThresholdSemantic   float64
	DupThresholdExhaustive float64
}

func (t RetrievalTunables) withDefaults() RetrievalTunables {
	if t.DenseK <= 0 {
		t.DenseK = 30
	}
	if t.SparseK <= 0 {
		t.SparseK = 30
	}
	if t.KeepSemantic <= 0 {
		t.KeepSemantic = 12
	}
	if t.ExhaustiveCeiling <= 0 {
		t.ExhaustiveCeiling = 100
	}
	if t.DupThresholdSemantic <= 0 {
		t.DupThresholdSemantic = 0.82
	}
	if t.DupThresholdExhaustive <= 0 {
		t.DupThresholdExhaustive = 0.90
	}
	return t
}

// Retriever runs one sub-question against a session corpus and assembles
// its context.
type Retriever struct {
	embedder ports.Embedder
	encoder  ports.CrossEncoder
	log      *slog.Logger
	tun      RetrievalTunables
}

func NewRetriever(embedder ports.Embedder, encoder ports.CrossEncoder, log *slog.Logger, tun RetrievalTunables) *Retriever {
	return &Retriever{
		embedder: embedder,
		encoder:  encoder,
		log:      log,
		tun:      tun.withDefaults(),
	}
}

// Retrieve picks the retrieval strategy of the sub-question, gathers and
// ranks candidates, and assembles the context. A document filter that
// matches nothing falls back to the unfiltered corpus; the miss is recorded
// on the returned context so the answer can carry a caveat.
func (r *Retriever) Retrieve(ctx context.Context, c *corpus.Corpus, sub domain.SubQuestion) (domain.AssembledContext, error) {
	var (
		cands []domain.RetrievalCandidate
		err   error
	)
	switch sub.Strategy {
	case domain.StrategyExhaustive:
		cands, err = r.gatherExhaustive(ctx, c, sub)
	default:
		cands, err = r.gatherSemantic(ctx, c, sub)
	}
	if err != nil {
		return domain.AssembledContext{}, err
	}

	filterMiss := ""
	if sub.DocumentFilter != "" {
		filtered := filterByDocument(cands, sub.DocumentFilter)
		if len(filtered) == 0 {
			r.log.Warn("document_filter_no_match",
				slog.String("filter", sub.DocumentFilter),
				slog.Int("candidates", len(cands)))
			filterMiss = sub.DocumentFilter
		} else {
			cands = filtered
		}
	}

	threshold := r.tun.DupThresholdSemantic
	keep := r.tun.KeepSemantic
	if sub.Strategy == domain.StrategyExhaustive {
		threshold = r.tun.DupThresholdExhaustive
		keep = r.tun.ExhaustiveCeiling
	}
	cands = FilterNearDuplicates(cands, threshold)
	cands = Rerank(ctx, r.log, r.encoder, sub.Text, cands)
	if len(cands) > keep {
		cands = cands[:keep]
	}

	assembled := AssembleContext(cands, sub.Strategy)
	assembled.FilterMiss = filterMiss
	return assembled, nil
}

func (r *Retriever) gatherSemantic(ctx context.Context, c *corpus.Corpus, sub domain.SubQuestion) ([]domain.RetrievalCandidate, error) {
	variants := ExpandQuery(sub)

	var dense, sparse []domain.RetrievalCandidate
	for _, variant := range variants {
		vector, err := r.embedder.EmbedQuery(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		hits, err := c.SearchDense(ctx, vector, r.tun.DenseK, "")
		if err != nil {
			return nil, fmt.Errorf("dense search: %w", err)
		}
		dense = append(dense, hits...)
		sparse = append(sparse, c.SearchSparse(variant, r.tun.SparseK)...)
	}

	return MergeCandidates(dense, sparse), nil
}

// gatherExhaustive serves count and list questions, which need every
// relevant chunk rather than the best few. It unions the sparse hits with
// all chunks carrying entities of the kinds the question asks about, capped
// at the ceiling.
func (r *Retriever) gatherExhaustive(_ context.Context, c *corpus.Corpus, sub domain.SubQuestion) ([]domain.RetrievalCandidate, error) {
	kinds := targetEntityKinds(sub.Text)
	tagged := c.ChunksWhere(func(chunk domain.Chunk) bool {
		for _, kind := range kinds {
			if chunk.HasEntities(kind) {
				return true
			}
		}
		return false
	}, r.tun.ExhaustiveCeiling)

	sparse := c.SearchSparse(sub.Text, r.tun.ExhaustiveCeiling)

	for _, chunk := range tagged {
		// A flat positive score keeps tagged chunks in the pool even when
		// they share no query terms; fusion weighting still prefers chunks
		// the sparse index also liked.
		sparse = append(sparse, domain.RetrievalCandidate{Chunk: chunk, SparseScore: 0.1})
	}

	merged := MergeCandidates(nil, sparse)
	if len(merged) > r.tun.ExhaustiveCeiling {
		merged = merged[:r.tun.ExhaustiveCeiling]
	}
	return merged, nil
}

var peopleHintRe = regexp.MustCompile(`(?i)\b(?:people|person|who|member|staff|employee|manager|lead|team)\b`)

func targetEntityKinds(question string) []domain.EntityKind {
	var kinds []domain.EntityKind
	if timelineHintRe.MatchString(question) {
		kinds = append(kinds, domain.EntityDates)
	}
	if peopleHintRe.MatchString(question) {
		kinds = append(kinds, domain.EntityPeople)
	}
	if locationHintRe.MatchString(question) {
		kinds = append(kinds, domain.EntityLocations)
	}
	if len(kinds) == 0 {
		kinds = append(kinds, domain.EntityProjects)
	}
	return kinds
}

// filterByDocument keeps candidates from documents matching the filter
// filename. Matching is flexible: case-insensitive on the base name with
// separators collapsed, so "report.pdf" matches "Q3_Report.pdf".
func filterByDocument(cands []domain.RetrievalCandidate, filter string) []domain.RetrievalCandidate {
	want := normalizeBaseName(filter)
	var out []domain.RetrievalCandidate
	for _, c := range cands {
		have := normalizeBaseName(c.Chunk.DocumentName)
		if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
			out = append(out, c)
		}
	}
	return out
}

func normalizeBaseName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == ' ' {
			return -1
		}
		return r
	}, base)
}
