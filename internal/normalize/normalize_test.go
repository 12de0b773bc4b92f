package normalize

import (
	"testing"
	"time"
)

func TestParseDateTwoDigitYear(t *testing.T) {
	parsed, ok := ParseDate("17-06-25", "")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Year() != 2025 {
		t.Fatalf("expected year 2025, got %d", parsed.Year())
	}
	if parsed.Month() != time.June || parsed.Day() != 17 {
		t.Fatalf("unexpected date: %s", parsed.Format("2006-01-02"))
	}
}

func TestParseDateDelimiters(t *testing.T) {
	for _, input := range []string{"05-03-2021", "05/03/2021", "05.03.2021"} {
		parsed, ok := ParseDate(input, "")
		if !ok {
			t.Fatalf("expected %q to parse", input)
		}
		if parsed.Year() != 2021 || parsed.Month() != time.March || parsed.Day() != 5 {
			t.Fatalf("unexpected date for %q: %s", input, parsed.Format("2006-01-02"))
		}
	}
}

func TestParseDateSwapsTransposedMonth(t *testing.T) {
	// Middle part 15 cannot be a month, so day and month are swapped.
	parsed, ok := ParseDate("06-15-24", "")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Year() != 2024 || parsed.Month() != time.June || parsed.Day() != 15 {
		t.Fatalf("unexpected date: %s", parsed.Format("2006-01-02"))
	}
}

func TestParseDateSwapOverflowNormalizes(t *testing.T) {
	// Both parts > 12: the swap leaves month=13, which time.Date
	// rolls into January of the following year.
	parsed, ok := ParseDate("13-15-24", "")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Year() != 2025 || parsed.Month() != time.January || parsed.Day() != 15 {
		t.Fatalf("unexpected date: %s", parsed.Format("2006-01-02"))
	}
}

func TestParseDateRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "2024/06", "12-13-14-15", "ab-cd-ef", "June 5 2024"} {
		if _, ok := ParseDate(input, ""); ok {
			t.Fatalf("expected %q to fail", input)
		}
	}
}

func TestParseDateWithClock(t *testing.T) {
	parsed, ok := ParseDate("01-02-2023", "14:35")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Hour() != 14 || parsed.Minute() != 35 {
		t.Fatalf("unexpected clock: %02d:%02d", parsed.Hour(), parsed.Minute())
	}

	parsed, ok = ParseDate("01-02-2023", "")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 {
		t.Fatalf("expected midnight, got %02d:%02d", parsed.Hour(), parsed.Minute())
	}
}

func TestYear(t *testing.T) {
	year, ok := Year("17-06-25")
	if !ok || year != 2025 {
		t.Fatalf("expected 2025, got %d ok=%v", year, ok)
	}
	if _, ok := Year("2024/06"); ok {
		t.Fatal("expected failure for two-part date")
	}
}

func TestMeaningfulCause(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"The roof collapsed", "Roof"},
		{"roof fall near face", "Roof"},
		{"Explosion, of gas", "Explosion"},
		{"due to inundation", "To"},
		{"", "Unknown"},
		{"the", "Unknown"},
		{"---", "Unknown"},
	}
	for _, tc := range cases {
		if got := MeaningfulCause(tc.input); got != tc.want {
			t.Fatalf("MeaningfulCause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
