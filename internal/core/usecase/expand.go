package usecase

import (
	"regexp"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

const maxVariants = 5

var (
	timelineHintRe = regexp.MustCompile(`(?i)\b(?:timeline|schedule|deadline|when|date|milestone)\b`)
	locationHintRe = regexp.MustCompile(`(?i)\b(?:where|location|address|site|venue)\b`)
)

// ExpandQuery produces search variants for a sub-question. The original text
// is always first; typed paraphrases append domain vocabulary the embedding
// model tends to cluster with the answer passages. At most five variants.
func ExpandQuery(sub domain.SubQuestion) []string {
	variants := []string{sub.Text}

	add := func(v string) {
		if len(variants) >= maxVariants {
			return
		}
		for _, existing := range variants {
			if strings.EqualFold(existing, v) {
				return
			}
		}
		variants = append(variants, v)
	}

	switch sub.Type {
	case domain.QuestionCount, domain.QuestionList:
		add(sub.Text + " complete list")
		add(sub.Text + " all items comprehensive")
	case domain.QuestionCompare:
		add(sub.Text + " comparison differences")
		add(sub.Text + " versus")
	}

	if timelineHintRe.MatchString(sub.Text) {
		add(sub.Text + " schedule dates deadlines milestones")
	}
	if locationHintRe.MatchString(sub.Text) {
		add(sub.Text + " location address site")
	}

	return variants
}
