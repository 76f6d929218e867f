package usecase

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

var answerNumberRe = regexp.MustCompile(`\b(\d{1,4})\b`)

// ValidateAnswer runs cheap plausibility checks on a synthesized answer and
// attaches advisory warnings. Validation never blocks or rewrites the
// answer; a panic inside a heuristic is swallowed and the answer passes
// unchecked.
func ValidateAnswer(log *slog.Logger, sub domain.SubQuestion, assembled domain.AssembledContext, ans domain.Answer, totalDocuments int) (out domain.Answer) {
	out = ans
	defer func() {
		if r := recover(); r != nil {
			log.Warn("answer_validation_panic", slog.Any("panic", r))
			out = ans
		}
	}()

	if assembled.FilterMiss != "" {
		out.AppendWarning(fmt.Sprintf(
			"The requested document %q was not found; the answer was drawn from all available documents.",
			assembled.FilterMiss))
	}
	if assembled.Empty() {
		return out
	}

	exhaustiveType := sub.Type == domain.QuestionCount || sub.Type == domain.QuestionList

	if exhaustiveType && len(assembled.Groups) == 1 && totalDocuments > 1 {
		out.AppendWarning(
			"This answer is based on a single document; other uploaded documents may contain additional items.")
	}

	if len(assembled.Chunks) < 3 {
		out.AppendWarning(
			"Limited context was available for this question; the answer may be incomplete.")
	}

	if sub.Type == domain.QuestionCount {
		checkCount(&out, sub, assembled)
	}
	return out
}

// checkCount compares the first number stated in the answer against the
// count of distinct tagged entities of the kind the question targets. A
// mismatch only warns: the tagger over- and under-counts on unusual names,
// so the model's reading of the text stays authoritative.
func checkCount(ans *domain.Answer, sub domain.SubQuestion, assembled domain.AssembledContext) {
	m := answerNumberRe.FindStringSubmatch(ans.Text)
	if m == nil {
		return
	}
	stated, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}

	kinds := targetEntityKinds(sub.Text)
	tagged := 0
	for _, kind := range kinds {
		tagged += len(assembled.AggregateEntities(kind))
	}
	if tagged == 0 {
		return
	}
	if stated != tagged {
		ans.AppendWarning(fmt.Sprintf(
			"The stated count (%d) differs from the %d distinct items tagged in the retrieved context; verify against the source documents.",
			stated, tagged))
	}
}
