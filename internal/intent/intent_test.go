package intent

import (
	"testing"
	"time"
)

func TestClassifyDefaultsToDateDescending(t *testing.T) {
	directive := Classify("what happened recently", Options{})
	if directive.SortBy != SortByDate || !directive.SortDesc {
		t.Fatalf("expected date desc default, got %+v", directive)
	}
	if directive.HasYearFilter() {
		t.Fatal("expected no year filter")
	}
	if directive.Limit != 7 {
		t.Fatalf("expected default limit 7, got %d", directive.Limit)
	}
}

func TestClassifyRankingByCasualties(t *testing.T) {
	directive := Classify("show the top casualties", Options{})
	if directive.SortBy != SortByCasualties || !directive.SortDesc {
		t.Fatalf("expected casualties desc, got %+v", directive)
	}
	// "top" and "casualties" are trigger words, not search keywords.
	if len(directive.Keywords) != 0 {
		t.Fatalf("expected no keywords, got %v", directive.Keywords)
	}
}

func TestClassifyRankingByInjuries(t *testing.T) {
	directive := Classify("which mines had the most injured workers", Options{})
	if directive.SortBy != SortByInjured {
		t.Fatalf("expected injured sort, got %s", directive.SortBy)
	}
}

func TestClassifyRankingNeedsBothTriggers(t *testing.T) {
	// "casualties" without "most"/"top" is not a ranking request.
	directive := Classify("casualties from roof falls", Options{})
	if directive.SortBy != SortByDate {
		t.Fatalf("expected date sort, got %s", directive.SortBy)
	}
}

func TestClassifyYearRange(t *testing.T) {
	directive := Classify("accidents in 2021", Options{MinYear: 2016, MaxYear: 2024})
	if !directive.HasYearFilter() {
		t.Fatal("expected year filter")
	}
	wantStart := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !directive.YearStart.Equal(wantStart) || !directive.YearEnd.Equal(wantEnd) {
		t.Fatalf("unexpected range: [%s, %s)", directive.YearStart, directive.YearEnd)
	}
}

func TestClassifyIgnoresYearOutsideRange(t *testing.T) {
	directive := Classify("accidents in 1999", Options{MinYear: 2016, MaxYear: 2024})
	if directive.HasYearFilter() {
		t.Fatal("expected no year filter for out-of-range year")
	}
}

func TestClassifyMaxYearDefaultsToCurrentYear(t *testing.T) {
	thisYear := time.Now().UTC().Year()
	directive := Classify("incidents in "+time.Now().UTC().Format("2006"), Options{MinYear: 2016})
	if !directive.HasYearFilter() {
		t.Fatalf("expected current year %d to be accepted", thisYear)
	}
}

func TestClassifyKeywords(t *testing.T) {
	directive := Classify("explosion accidents in jharkhand coal mines", Options{})
	want := map[string]bool{"explosion": true, "jharkhand": true, "coal": true}
	if len(directive.Keywords) != len(want) {
		t.Fatalf("unexpected keywords: %v", directive.Keywords)
	}
	for _, keyword := range directive.Keywords {
		if !want[keyword] {
			t.Fatalf("unexpected keyword %q in %v", keyword, directive.Keywords)
		}
	}
}

func TestClassifyDropsShortAndStopTokens(t *testing.T) {
	directive := Classify("how many gas leaks at the mine", Options{})
	for _, keyword := range directive.Keywords {
		if keyword == "how" || keyword == "many" || keyword == "gas" || keyword == "the" {
			t.Fatalf("token %q should have been dropped", keyword)
		}
	}
}

func TestClassifyStripsPunctuationFromKeywords(t *testing.T) {
	directive := Classify("anything about inundation?", Options{})
	found := false
	for _, keyword := range directive.Keywords {
		if keyword == "inundation" {
			found = true
		}
		if keyword == "inundation?" {
			t.Fatal("punctuation should be stripped")
		}
	}
	if !found {
		t.Fatalf("expected inundation keyword, got %v", directive.Keywords)
	}
}
