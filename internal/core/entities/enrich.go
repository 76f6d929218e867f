package entities

import (
	"fmt"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

// SourceMeta identifies where a raw segment came from.
type SourceMeta struct {
	SessionID     string
	DocumentID    string
	DocumentName  string
	DocumentPath  string
	Page          int
	SequenceIndex int
}

// Per-kind cap on the joined mention list admitted into the prefix line.
const maxPrefixSegment = 200

var prefixLabels = map[domain.EntityKind]string{
	domain.EntityProjects:  "Projects",
	domain.EntityPeople:    "People",
	domain.EntityDates:     "Dates",
	domain.EntityLocations: "Locations",
}

// Enrich wraps a raw text segment into a Chunk: tags entities, records
// counts, and prepends the entity prefix when any entity was found. The raw
// segment is always preserved unmodified in RawText.
func Enrich(raw string, meta SourceMeta) domain.Chunk {
	set := Tag(raw)

	text := raw
	if prefix := EntityPrefix(set); prefix != "" {
		text = prefix + "\n\n" + raw
	}

	return domain.Chunk{
		ID:            fmt.Sprintf("%s-chunk-%d", meta.DocumentID, meta.SequenceIndex),
		Text:          text,
		RawText:       raw,
		SessionID:     meta.SessionID,
		DocumentID:    meta.DocumentID,
		DocumentName:  meta.DocumentName,
		DocumentPath:  meta.DocumentPath,
		Page:          meta.Page,
		SequenceIndex: meta.SequenceIndex,
		Entities:      set,
		EntityCounts:  set.Counts(),
	}
}

// EntityPrefix renders the single-line bracketed summary, e.g.
// "[Projects: A, B | Dates: 2026]". Empty when no entities were tagged.
func EntityPrefix(set domain.EntitySet) string {
	if set.Empty() {
		return ""
	}

	var segments []string
	for _, kind := range domain.EntityKinds {
		values := set[kind]
		if len(values) == 0 {
			continue
		}
		joined := strings.Join(values, ", ")
		if len(joined) > maxPrefixSegment {
			continue
		}
		segments = append(segments, prefixLabels[kind]+": "+joined)
	}
	if len(segments) == 0 {
		return ""
	}
	return "[" + strings.Join(segments, " | ") + "]"
}

// StripEntityPrefix returns the original raw segment from an enriched text.
// Texts without a prefix pass through unchanged.
func StripEntityPrefix(text string) string {
	if !strings.HasPrefix(text, "[") {
		return text
	}
	idx := strings.Index(text, "]\n\n")
	if idx < 0 {
		return text
	}
	return text[idx+len("]\n\n"):]
}
