package usecase

import (
	"regexp"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/entities"
)

var (
	countRe      = regexp.MustCompile(`(?i)\b(?:how many|count of|count the|number of|total number)\b`)
	listRe       = regexp.MustCompile(`(?i)\b(?:list|enumerate|what are all|name all|give me all|show all)\b`)
	compareRe    = regexp.MustCompile(`(?i)\b(?:difference|differences|compare|comparison|versus|vs\.?)\b`)
	definitionRe = regexp.MustCompile(`(?i)\b(?:what is|what's|define|definition of|meaning of)\b`)

	conjInterrogativeRe = regexp.MustCompile(`(?i)\b(?:and|also|plus)\s+(?:what|how|when|where|who|which|list|give|tell|provide|show)\b`)
	conjAttributeRe     = regexp.MustCompile(`\b(?:and|also|plus)\s+(?:the\s+)?([a-z]+)\s+(?:of|for|in)\s+([A-Z][A-Za-z0-9._-]*)`)
	attributeEntityRe   = regexp.MustCompile(`\b(?:of|for|in)\s+([A-Z][A-Za-z0-9._-]*)`)

	documentFilterRe = regexp.MustCompile(`(?i)\b([A-Za-z0-9_\-.]+\.(?:pdf|docx?|xlsx?))\b`)

	pronounRe = regexp.MustCompile(`(?i)\b(it|that|this|they|them|these|those)\b`)
)

var conversationalTriggers = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "greetings": {},
	"thanks": {}, "thank you": {}, "thx": {},
	"ok": {}, "okay": {}, "cool": {}, "great": {}, "perfect": {}, "awesome": {},
	"bye": {}, "goodbye": {}, "help": {},
}

var conversationalPrefixes = []string{
	"my name is", "call me", "nice to meet",
	"what is my name", "who am i", "do you know my name", "do you remember me",
}

// Understand classifies a question's intent, detects multiple independent
// intents, extracts an explicit document filter, and resolves pronouns from
// history. Ambiguity defaults to fact + single intent.
func Understand(question string, history []domain.ChatMessage) domain.QueryAnalysis {
	trimmed := strings.TrimSpace(question)

	analysis := domain.QueryAnalysis{
		Type:      classifyQuestionType(trimmed),
		Rewritten: trimmed,
	}

	if isConversational(trimmed) {
		analysis.Conversational = true
		return analysis
	}

	analysis.MultiIntent = detectMultiIntent(trimmed)
	analysis.DocumentFilter = extractDocumentFilter(trimmed)
	analysis.Rewritten = rewriteWithHistory(trimmed, history)
	return analysis
}

func classifyQuestionType(question string) domain.QuestionType {
	switch {
	case countRe.MatchString(question):
		return domain.QuestionCount
	case listRe.MatchString(question):
		return domain.QuestionList
	case compareRe.MatchString(question):
		return domain.QuestionCompare
	case definitionRe.MatchString(question):
		return domain.QuestionDefinition
	default:
		return domain.QuestionFact
	}
}

// detectMultiIntent flags questions joining two independent information
// requests. A conjunction joining two attributes of one subject ("budget and
// timeline for X") is a single compound question: the clause after the
// conjunction must introduce its own interrogative or its own entity
// reference distinct from the one before the conjunction.
func detectMultiIntent(question string) bool {
	if strings.Count(question, "?") >= 2 {
		first := strings.Index(question, "?")
		if strings.TrimSpace(question[first+1:]) != "" {
			return true
		}
	}

	if conjInterrogativeRe.MatchString(question) {
		return true
	}

	if m := conjAttributeRe.FindStringSubmatchIndex(question); m != nil {
		after := question[m[4]:m[5]]
		before := question[:m[0]]
		if prior := attributeEntityRe.FindAllStringSubmatch(before, -1); len(prior) > 0 {
			priorEntity := prior[len(prior)-1][1]
			if !strings.EqualFold(priorEntity, after) {
				return true
			}
		}
	}

	return false
}

func extractDocumentFilter(question string) string {
	if m := documentFilterRe.FindStringSubmatch(question); m != nil {
		return m[1]
	}
	return ""
}

// rewriteWithHistory replaces a bare pronoun with the most recently
// mentioned entity found in prior turns. When no antecedent can be found the
// question is returned unchanged; an antecedent is never invented.
func rewriteWithHistory(question string, history []domain.ChatMessage) string {
	if len(history) == 0 {
		return question
	}
	loc := pronounRe.FindStringIndex(question)
	if loc == nil {
		return question
	}

	antecedent := mostRecentEntity(history)
	if antecedent == "" {
		return question
	}
	return question[:loc[0]] + antecedent + question[loc[1]:]
}

func mostRecentEntity(history []domain.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		set := entities.Tag(history[i].Content)
		for _, kind := range []domain.EntityKind{domain.EntityProjects, domain.EntityPeople, domain.EntityLocations} {
			if values := set[kind]; len(values) > 0 {
				return values[len(values)-1]
			}
		}
	}
	return ""
}

func isConversational(question string) bool {
	cleaned := strings.ToLower(strings.Trim(question, "!.,? "))
	if cleaned == "" {
		return false
	}
	if _, ok := conversationalTriggers[cleaned]; ok {
		return true
	}
	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return true
		}
	}
	return false
}
