package usecase

import (
	"regexp"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

// A split point is a conjunction whose following word starts a new request.
var conjRe = regexp.MustCompile(`(?i)\s+(and|also|plus)\s+(what|how|when|where|who|which|list|give|tell|provide|show|the)\b`)

const maxSubQuestions = 4

// Decompose splits a multi-intent question into independently retrievable
// sub-questions. Each sub-question is classified on its own; a document
// filter named in the parent applies to every sub-question unless a
// sub-question names its own file. If splitting produces a fragment too
// short to stand alone the whole question is kept as a single sub-question.
func Decompose(question string, analysis domain.QueryAnalysis) []domain.SubQuestion {
	single := func() []domain.SubQuestion {
		return []domain.SubQuestion{{
			Text:           analysis.Rewritten,
			Type:           analysis.Type,
			Strategy:       analysis.Type.Strategy(),
			DocumentFilter: analysis.DocumentFilter,
		}}
	}

	if !analysis.MultiIntent {
		return single()
	}

	parts := splitIntents(analysis.Rewritten)
	if len(parts) < 2 {
		return single()
	}
	if len(parts) > maxSubQuestions {
		parts = parts[:maxSubQuestions]
	}

	subs := make([]domain.SubQuestion, 0, len(parts))
	for _, part := range parts {
		text := strings.TrimSpace(strings.Trim(part, "?,. "))
		if len(strings.Fields(text)) < 2 {
			return single()
		}
		qt := classifyQuestionType(text)
		filter := extractDocumentFilter(text)
		if filter == "" {
			filter = analysis.DocumentFilter
		}
		subs = append(subs, domain.SubQuestion{
			Text:           text,
			Type:           qt,
			Strategy:       qt.Strategy(),
			DocumentFilter: filter,
		})
	}
	return subs
}

func splitIntents(question string) []string {
	// Questions already separated by question marks split there first.
	if strings.Count(question, "?") >= 2 {
		var parts []string
		for _, p := range strings.SplitAfter(question, "?") {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, strings.TrimSpace(p))
			}
		}
		if len(parts) >= 2 {
			return parts
		}
	}

	var parts []string
	rest := question
	for {
		m := conjRe.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		head := strings.TrimSpace(rest[:m[0]])
		if head != "" {
			parts = append(parts, head)
		}
		// The clause resumes at the word after the conjunction.
		rest = rest[m[4]:]
	}
	if strings.TrimSpace(rest) != "" {
		parts = append(parts, strings.TrimSpace(rest))
	}
	if len(parts) < 2 {
		return []string{question}
	}

	// A trailing clause like "the objective of Beta" inherits the leading
	// interrogative of the first clause so it reads as a question on its own.
	lead := leadingInterrogative(parts[0])
	for i := 1; i < len(parts); i++ {
		if lead != "" && !startsInterrogative(parts[i]) {
			parts[i] = lead + " " + parts[i]
		}
	}
	return parts
}

var interrogativeLeadRe = regexp.MustCompile(`(?i)^(what is|what are|what's|how many|how much|when is|when was|where is|who is|which)\b`)

func leadingInterrogative(clause string) string {
	if m := interrogativeLeadRe.FindString(strings.TrimSpace(clause)); m != "" {
		return m
	}
	return ""
}

func startsInterrogative(clause string) bool {
	c := strings.ToLower(strings.TrimSpace(clause))
	for _, w := range []string{"what", "how", "when", "where", "who", "which", "list", "give", "tell", "provide", "show"} {
		if strings.HasPrefix(c, w+" ") || c == w {
			return true
		}
	}
	return false
}
