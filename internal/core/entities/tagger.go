package entities

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

// maxPerKind bounds the prefix size downstream of tagging.
const maxPerKind = 50

var (
	projectLabelRe    = regexp.MustCompile(`(?i)(?:Project\s+(?:Name|Title)?|Title)\s*[:\-]\s*([A-Z][A-Za-z0-9\s\-&,]+?)(?:\n|\.|\||$)`)
	projectNumberedRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+([A-Z][A-Za-z0-9\s\-&,]{8,99})(?:\n|$)`)
	projectSuffixRe   = regexp.MustCompile(`\b([A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)+\s+(?:Project|System|Platform|Solution|Initiative|Management|Service))\b`)

	personLabelRe     = regexp.MustCompile(`(?i:(?:Name|Candidate|Person|Applicant|Individual))\s*[:\-]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})`)
	personContextRe   = regexp.MustCompile(`(?:Name|Candidate|Person|Applicant|Contact|Author|By)\s*[:\-]?\s*([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
	personHonorificRe = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof)\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\b`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:Q[1-4]|Quarter\s+[1-4])\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d+\s+(?:day|week|month|year)s?\b`),
	}

	locationLabelRe = regexp.MustCompile(`(?i:(?:Location|Place|Site|Address|City|Country|Located in|Based in|Headquartered in))\s*[:\-]?\s*([A-Z][A-Za-z0-9\s,\-]+?)(?:\n|\.|\||$)`)
	locationPairRe  = regexp.MustCompile(`\b([A-Z][a-z]+(?:,\s+[A-Z][a-z]+)+)\b`)

	nonProjectPrefixRe = regexp.MustCompile(`^(?:Introduction|Overview|Conclusion|Summary|Background|The|In|On)\b`)
)

var projectKeywords = []string{"system", "platform", "solution", "management", "service", "project", "initiative"}

var techTerms = []string{"System", "Project", "Platform", "Management", "Solution", "Document", "Intelligence"}

// Tag scans text for recognizable surface patterns and returns typed entity
// mentions. Pure and deterministic; unmatched kinds yield no entry.
func Tag(text string) domain.EntitySet {
	if strings.TrimSpace(text) == "" {
		return domain.EntitySet{}
	}

	set := domain.EntitySet{}
	if projects := tagProjects(text); len(projects) > 0 {
		set[domain.EntityProjects] = projects
	}
	if people := tagPeople(text); len(people) > 0 {
		set[domain.EntityPeople] = people
	}
	if dates := tagDates(text); len(dates) > 0 {
		set[domain.EntityDates] = dates
	}
	if locations := tagLocations(text); len(locations) > 0 {
		set[domain.EntityLocations] = locations
	}
	return set
}

func tagProjects(text string) []string {
	acc := newDedup()

	for _, m := range projectLabelRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		switch strings.ToLower(name) {
		case "project name", "project", "title":
			continue
		}
		if len(name) > 8 && len(name) < 100 {
			acc.add(name)
		}
	}

	for _, m := range projectNumberedRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if nonProjectPrefixRe.MatchString(name) {
			continue
		}
		if containsAnyFold(name, projectKeywords) {
			acc.add(name)
		}
	}

	for _, m := range projectSuffixRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) > 12 && len(name) < 100 {
			acc.add(name)
		}
	}

	return acc.sorted()
}

func tagPeople(text string) []string {
	acc := newDedup()

	for _, re := range []*regexp.Regexp{personLabelRe, personContextRe, personHonorificRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) < 5 || len(name) > 50 {
				continue
			}
			words := len(strings.Fields(name))
			if words < 2 || words > 3 {
				continue
			}
			if containsAny(name, techTerms) {
				continue
			}
			acc.add(name)
		}
	}

	return acc.sorted()
}

func tagDates(text string) []string {
	acc := newDedup()
	for _, re := range datePatterns {
		for _, m := range re.FindAllString(text, -1) {
			acc.add(m)
		}
	}
	return acc.sorted()
}

func tagLocations(text string) []string {
	acc := newDedup()

	for _, m := range locationLabelRe.FindAllStringSubmatch(text, -1) {
		loc := strings.TrimSpace(m[1])
		if len(loc) > 3 && len(loc) < 100 {
			acc.add(loc)
		}
	}
	for _, m := range locationPairRe.FindAllStringSubmatch(text, -1) {
		loc := strings.TrimSpace(m[1])
		if len(loc) > 3 && len(loc) < 100 {
			acc.add(loc)
		}
	}

	return acc.sorted()
}

// dedup keeps first-seen casing while deduplicating case-insensitively.
type dedup struct {
	seen   map[string]struct{}
	values []string
}

func newDedup() *dedup {
	return &dedup{seen: make(map[string]struct{})}
}

func (d *dedup) add(value string) {
	key := strings.ToLower(value)
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.values = append(d.values, value)
}

func (d *dedup) sorted() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	if len(out) > maxPerKind {
		out = out[:maxPerKind]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, needle := range needles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
