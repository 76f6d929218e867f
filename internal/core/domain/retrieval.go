package domain

// RetrievalCandidate is a transient scored chunk produced during one
// retrieval call. Score holds the weighted dense/sparse combination;
// RerankScore is set after the cross-encoder pass.
type RetrievalCandidate struct {
	Chunk       Chunk
	DenseScore  float64
	SparseScore float64
	Score       float64
	RerankScore float64
}

// FinalScore prefers the rerank score when the candidate passed through the
// cross-encoder.
func (c RetrievalCandidate) FinalScore() float64 {
	if c.RerankScore != 0 {
		return c.RerankScore
	}
	return c.Score
}

// ContextEntry is one chunk selected into an assembled context.
type ContextEntry struct {
	Chunk Chunk
	Score float64
}

// DocumentGroup holds the selected entries of one source document.
type DocumentGroup struct {
	DocumentName string
	Entries      []ContextEntry
}

// AssembledContext is the token-budgeted, document-grouped context produced
// for a single sub-question. Rebuilt per query, never persisted.
type AssembledContext struct {
	Groups     []DocumentGroup
	Text       string
	Chunks     []Chunk
	TokenCount int
	Strategy   RetrievalStrategy
	FilterMiss string // document filter that matched nothing, if any
}

func (c AssembledContext) Empty() bool {
	return len(c.Chunks) == 0
}

func (c AssembledContext) DocumentNames() []string {
	names := make([]string, 0, len(c.Groups))
	for _, group := range c.Groups {
		names = append(names, group.DocumentName)
	}
	return names
}

// AggregateEntities returns the distinct entities of one kind across all
// included chunks, preserving first-seen order and casing.
func (c AssembledContext) AggregateEntities(kind EntityKind) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, chunk := range c.Chunks {
		for _, value := range chunk.Entities[kind] {
			key := foldKey(value)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}
