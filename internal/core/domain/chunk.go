package domain

// EntityKind identifies a category of entity mention detected in chunk text.
type EntityKind string

const (
	EntityProjects  EntityKind = "projects"
	EntityPeople    EntityKind = "people"
	EntityDates     EntityKind = "dates"
	EntityLocations EntityKind = "locations"
)

// EntityKinds lists all kinds in stable order.
var EntityKinds = []EntityKind{EntityProjects, EntityPeople, EntityDates, EntityLocations}

// EntitySet maps entity kind to the distinct mentions found, in first-seen order.
type EntitySet map[EntityKind][]string

func (s EntitySet) Empty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

func (s EntitySet) Counts() map[EntityKind]int {
	counts := make(map[EntityKind]int, len(s))
	for kind, values := range s {
		if len(values) > 0 {
			counts[kind] = len(values)
		}
	}
	return counts
}

// Chunk is the immutable unit of retrievable text. Text may carry an entity
// prefix; RawText always holds the unmodified source segment.
type Chunk struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	RawText       string             `json:"raw_text"`
	SessionID     string             `json:"session_id"`
	DocumentID    string             `json:"document_id"`
	DocumentName  string             `json:"document_name"`
	DocumentPath  string             `json:"document_path"`
	Page          int                `json:"page"`
	SequenceIndex int                `json:"sequence_index"`
	Entities      EntitySet          `json:"entities,omitempty"`
	EntityCounts  map[EntityKind]int `json:"entity_counts,omitempty"`
}

func (c Chunk) HasEntities(kind EntityKind) bool {
	return c.EntityCounts[kind] > 0
}
