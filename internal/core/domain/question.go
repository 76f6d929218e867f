package domain

// QuestionType tags the intent class of a (sub-)question.
type QuestionType string

const (
	QuestionFact       QuestionType = "fact"
	QuestionCount      QuestionType = "count"
	QuestionList       QuestionType = "list"
	QuestionCompare    QuestionType = "compare"
	QuestionDefinition QuestionType = "definition"
)

// RetrievalStrategy selects how candidates are gathered for a question.
type RetrievalStrategy string

const (
	StrategySemantic       RetrievalStrategy = "semantic"
	StrategyExhaustive     RetrievalStrategy = "exhaustive"
	StrategyConversational RetrievalStrategy = "conversational"
)

// Strategy maps a question type to its retrieval strategy. Counting and
// listing questions sweep the corpus; everything else stays bounded.
func (t QuestionType) Strategy() RetrievalStrategy {
	switch t {
	case QuestionCount, QuestionList:
		return StrategyExhaustive
	default:
		return StrategySemantic
	}
}

// QueryAnalysis is the output of query understanding for one inbound question.
type QueryAnalysis struct {
	Type           QuestionType
	MultiIntent    bool
	Conversational bool
	DocumentFilter string
	Rewritten      string
}

// SubQuestion is one independently processed unit of a decomposed question.
type SubQuestion struct {
	Text           string
	Type           QuestionType
	Strategy       RetrievalStrategy
	DocumentFilter string
}

// ChatMessage is one prior turn of the conversation, used for pronoun
// resolution and conversational grounding.
type ChatMessage struct {
	ID        string `json:"id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
