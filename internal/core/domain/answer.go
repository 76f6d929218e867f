package domain

import "strings"

// Answer is the user-facing result of the pipeline for one question.
// Citations hold the distinct document names actually referenced.
type Answer struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
	Warning   string   `json:"warning,omitempty"`
}

// AppendWarning adds advisory text without touching the substantive answer.
func (a *Answer) AppendWarning(warning string) {
	warning = strings.TrimSpace(warning)
	if warning == "" {
		return
	}
	if a.Warning == "" {
		a.Warning = warning
		return
	}
	a.Warning += " " + warning
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
