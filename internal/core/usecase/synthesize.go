package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/prompts"
)

// buildPrompt renders the generation prompt for one sub-question. Count and
// list questions use the enumerate-then-total template; everything else uses
// the plain answering template.
func buildPrompt(set prompts.Set, sub domain.SubQuestion, assembled domain.AssembledContext) string {
	template := set.Answer
	if sub.Type == domain.QuestionCount || sub.Type == domain.QuestionList {
		template = set.Count
	}
	return fmt.Sprintf(template, set.System, assembled.Text, sub.Text)
}

// extractCitations returns the context document names the answer text
// actually mentions. When the model cited nothing recognizable every context
// document is credited, so an answer built from context is never presented
// as unsourced.
func extractCitations(answer string, assembled domain.AssembledContext) []string {
	names := assembled.DocumentNames()
	lower := strings.ToLower(answer)

	var cited []string
	for _, name := range names {
		if mentionsDocument(lower, name) {
			cited = append(cited, name)
		}
	}
	if len(cited) == 0 {
		cited = append(cited, names...)
	}
	sort.Strings(cited)
	return cited
}

func mentionsDocument(lowerAnswer, name string) bool {
	full := strings.ToLower(name)
	if strings.Contains(lowerAnswer, full) {
		return true
	}
	// Models often cite without the extension.
	if dot := strings.LastIndex(full, "."); dot > 0 {
		base := full[:dot]
		if len(base) >= 4 && strings.Contains(lowerAnswer, base) {
			return true
		}
	}
	return false
}

// combineAnswers joins per-sub-question answers in question order and unions
// their citations and warnings.
func combineAnswers(subs []domain.SubQuestion, answers []domain.Answer) domain.Answer {
	if len(answers) == 1 {
		return answers[0]
	}

	var b strings.Builder
	citations := make(map[string]struct{})
	var warnings []string
	for i, ans := range answers {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**%s**\n%s", subs[i].Text, ans.Text)
		for _, c := range ans.Citations {
			citations[c] = struct{}{}
		}
		if ans.Warning != "" {
			warnings = append(warnings, ans.Warning)
		}
	}

	combined := domain.Answer{Text: b.String()}
	for c := range citations {
		combined.Citations = append(combined.Citations, c)
	}
	sort.Strings(combined.Citations)
	combined.Warning = strings.Join(warnings, " ")
	return combined
}
