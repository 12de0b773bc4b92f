// Package normalize turns the free-text date, time and cause fields of
// DGMS safety alerts into structured values for filtering and charting.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// CauseLabels is the fixed classification used by the extraction
// pipeline. The store does not enforce it; it is assumed upstream.
var CauseLabels = []string{
	"Fire",
	"Explosion",
	"Roof Fall",
	"Fall",
	"Machinery",
	"Transport",
	"Electricity",
	"Ground Movement",
	"Eruption Of Water",
	"Flying Pieces",
	"Combustible Gas",
	"Inundation",
}

var (
	datePartSplit = regexp.MustCompile(`[-/.]`)
	nonWord       = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// causeStopWords are discarded when deriving a grouping key from a
// free-text cause description.
var causeStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "by": {}, "due": {}, "to": {}, "and": {},
}

// ParseDate decomposes a DGMS date string ("17-06-25", "17/06/2025",
// "17.6.25") plus an optional "HH:MM" time into a calendar date.
// Input must split into exactly three numeric parts; anything else
// reports failure. Two-digit years mean 2000+year. When the middle
// part exceeds 12 the day and month are assumed to be transposed and
// are swapped; genuinely ambiguous inputs (both parts <= 12) are taken
// at face value.
func ParseDate(dateStr, timeStr string) (time.Time, bool) {
	parts := datePartSplit.Split(strings.TrimSpace(dateStr), -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	numbers := make([]int, 3)
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return time.Time{}, false
		}
		numbers[i] = value
	}

	day, month, year := numbers[0], numbers[1], numbers[2]
	if year < 100 {
		year += 2000
	}
	if month > 12 {
		day, month = month, day
	}

	hour, minute := parseClock(timeStr)
	// time.Date normalizes out-of-range components, so a leftover
	// month overflow still resolves to a valid calendar date.
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
}

// Year reports the calendar year of a DGMS date string, derived by
// parsing the full date and reading the year back.
func Year(dateStr string) (int, bool) {
	parsed, ok := ParseDate(dateStr, "")
	if !ok {
		return 0, false
	}
	return parsed.Year(), true
}

func parseClock(timeStr string) (int, int) {
	trimmed := strings.TrimSpace(timeStr)
	if trimmed == "" {
		return 0, 0
	}
	fields := strings.SplitN(trimmed, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, 0
	}
	minute := 0
	if len(fields) == 2 {
		if parsed, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
			minute = parsed
		}
	}
	return hour, minute
}

// MeaningfulCause derives a short grouping key from a free-text cause
// description: the first token that is not a stop-word (looking no
// further than the second token), punctuation stripped, first letter
// capitalized. This is a charting key, not a canonical classification.
func MeaningfulCause(cause string) string {
	tokens := strings.Fields(strings.TrimSpace(cause))
	if len(tokens) == 0 {
		return "Unknown"
	}
	token := tokens[0]
	if _, stop := causeStopWords[strings.ToLower(nonWord.ReplaceAllString(token, ""))]; stop {
		if len(tokens) < 2 {
			return "Unknown"
		}
		token = tokens[1]
	}
	token = nonWord.ReplaceAllString(token, "")
	if token == "" {
		return "Unknown"
	}
	runes := []rune(strings.ToLower(token))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
