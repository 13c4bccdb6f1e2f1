package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
)

// Date-hint confidence levels. Only hints at or above ConfidenceFilter are
// applied as a publication-date filter; weaker hints are advisory.
const (
	ConfidenceNone   = 0.0
	ConfidenceWeak   = 0.4
	ConfidenceFilter = 0.8
	ConfidenceStrong = 0.9
)

var (
	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	longDatePattern  = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
	monthYearPattern = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})\b`)
)

// ParseDateHint extracts a calendar date from free text, returning the date
// and a confidence indicator. It is a pure function with no I/O.
//
// An ISO date ("2025-05-15") is a strong hint; a written date
// ("May 15, 2025") slightly less so; a bare month and year ("May 2025")
// resolves to the first of the month with weak confidence, since it names a
// window rather than a day.
func ParseDateHint(text string) (ingest.Day, float64) {
	if m := isoDatePattern.FindString(text); m != "" {
		if day, err := ingest.ParseDay(m); err == nil {
			return day, ConfidenceStrong
		}
	}
	if m := longDatePattern.FindStringSubmatch(text); m != nil {
		raw := m[1] + " " + m[2] + ", " + m[3]
		if t, err := time.Parse("January 2, 2006", raw); err == nil {
			return ingest.DayOf(t), ConfidenceFilter
		}
	}
	if m := monthYearPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("January 2006", m[1]+" "+m[2]); err == nil {
			return ingest.DayOf(t), ConfidenceWeak
		}
	}
	return ingest.Day{}, ConfidenceNone
}

// stripDateHint removes the matched date expression from the text so the
// keyword match is not polluted by the date itself.
func stripDateHint(text string) string {
	for _, p := range []*regexp.Regexp{isoDatePattern, longDatePattern, monthYearPattern} {
		if p.MatchString(text) {
			return strings.Join(strings.Fields(p.ReplaceAllString(text, " ")), " ")
		}
	}
	return text
}
