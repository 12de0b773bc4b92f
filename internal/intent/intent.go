// Package intent maps a free-text dashboard question to a structured
// incident-query directive. Classification is a fixed-priority set of
// string heuristics with no store access, so it stays pure and total.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByDate       SortField = "date"
	SortByCasualties SortField = "casualties"
	SortByInjured    SortField = "injured"
)

// Directive is the declarative query produced from one chat message.
// YearStart/YearEnd describe a half-open range [YearStart, YearEnd);
// both are zero when no temporal intent was detected.
type Directive struct {
	SortBy    SortField
	SortDesc  bool
	YearStart time.Time
	YearEnd   time.Time
	Keywords  []string
	Limit     int
}

func (d Directive) HasYearFilter() bool {
	return !d.YearStart.IsZero()
}

type Options struct {
	MinYear int
	MaxYear int // 0 means the current year
	Limit   int
}

const (
	defaultMinYear = 2016
	defaultLimit   = 7
)

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9]`)

// stopWords covers filler vocabulary plus the ranking trigger terms, so
// a message like "top casualties in 2021" contributes no keyword noise.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "and": {}, "with": {},
	"what": {}, "which": {}, "when": {}, "where": {}, "who": {},
	"how": {}, "many": {}, "much": {}, "show": {}, "tell": {}, "list": {},
	"give": {}, "about": {}, "from": {}, "that": {}, "this": {},
	"there": {}, "have": {}, "most": {}, "top": {}, "highest": {},
	"accident": {}, "accidents": {}, "incident": {}, "incidents": {},
	"casualty": {}, "casualties": {}, "death": {}, "deaths": {},
	"injured": {}, "injury": {}, "injuries": {}, "killed": {},
	"mine": {}, "mines": {}, "mining": {}, "year": {}, "years": {},
	"happened": {}, "occurred": {}, "recent": {}, "latest": {},
}

// Classify inspects a lowercased message for ranking, temporal and
// keyword intent, in that priority order. First match wins within each
// category; the categories compose.
func Classify(message string, opts Options) Directive {
	if opts.MinYear <= 0 {
		opts.MinYear = defaultMinYear
	}
	if opts.MaxYear <= 0 {
		opts.MaxYear = time.Now().UTC().Year()
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultLimit
	}

	lower := strings.ToLower(message)
	directive := Directive{
		SortBy:   SortByDate,
		SortDesc: true,
		Limit:    opts.Limit,
	}

	if strings.Contains(lower, "most") || strings.Contains(lower, "top") {
		switch {
		case strings.Contains(lower, "casualt") || strings.Contains(lower, "death"):
			directive.SortBy = SortByCasualties
		case strings.Contains(lower, "injur"):
			directive.SortBy = SortByInjured
		}
	}

	if year, ok := findYear(lower, opts.MinYear, opts.MaxYear); ok {
		directive.YearStart = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		directive.YearEnd = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	directive.Keywords = extractKeywords(lower)
	return directive
}

func findYear(lower string, minYear, maxYear int) (int, bool) {
	for _, match := range yearPattern.FindAllString(lower, -1) {
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if year >= minYear && year <= maxYear {
			return year, true
		}
	}
	return 0, false
}

func extractKeywords(lower string) []string {
	var keywords []string
	seen := map[string]struct{}{}
	for _, token := range strings.Fields(lower) {
		if _, stop := stopWords[token]; stop {
			continue
		}
		if len(token) < 4 {
			continue
		}
		cleaned := nonWord.ReplaceAllString(token, "")
		if cleaned == "" {
			continue
		}
		if _, stop := stopWords[cleaned]; stop {
			continue
		}
		if yearPattern.MatchString(cleaned) {
			continue
		}
		if _, exists := seen[cleaned]; exists {
			continue
		}
		seen[cleaned] = struct{}{}
		keywords = append(keywords, cleaned)
	}
	return keywords
}
