package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/khanijo/minewatch/internal/intent"
	"github.com/khanijo/minewatch/internal/prompt"
	"github.com/khanijo/minewatch/internal/store"
)

type fakeContextStore struct {
	calls     int
	last      intent.Directive
	incidents []store.Incident
	err       error
}

func (f *fakeContextStore) QueryIncidents(ctx context.Context, directive intent.Directive) ([]store.Incident, error) {
	f.calls++
	f.last = directive
	if f.err != nil {
		return nil, f.err
	}
	return f.incidents, nil
}

type fakeModel struct {
	calls   int
	prompts []string
	answer  string
	err     error
}

func (f *fakeModel) Generate(ctx context.Context, p string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnswerRunsPipeline(t *testing.T) {
	contextStore := &fakeContextStore{incidents: []store.Incident{{Mine: "Jharia"}}}
	model := &fakeModel{answer: " a generated answer "}
	service := New(contextStore, model, Config{MinYear: 2016, MaxYear: 2024}, discardLogger())

	answer, err := service.Answer(context.Background(), "top casualties in 2021")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "a generated answer" {
		t.Fatalf("expected trimmed relay, got %q", answer)
	}
	if contextStore.calls != 1 {
		t.Fatalf("expected one context query, got %d", contextStore.calls)
	}
	if contextStore.last.SortBy != intent.SortByCasualties {
		t.Fatalf("directive not forwarded: %+v", contextStore.last)
	}
	if !contextStore.last.HasYearFilter() {
		t.Fatal("expected year filter in directive")
	}
	if model.calls != 1 || !strings.Contains(model.prompts[0], "Jharia") {
		t.Fatalf("prompt missing context rows: %v", model.prompts)
	}
}

func TestAnswerDegradesOnStoreFailure(t *testing.T) {
	contextStore := &fakeContextStore{err: errors.New("store outage")}
	model := &fakeModel{answer: "best effort"}
	service := New(contextStore, model, Config{}, discardLogger())

	answer, err := service.Answer(context.Background(), "anything about explosions")
	if err != nil {
		t.Fatalf("expected soft degradation, got %v", err)
	}
	if answer != "best effort" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if !strings.Contains(model.prompts[0], "No matching incidents") {
		t.Fatalf("expected empty-context marker in prompt:\n%s", model.prompts[0])
	}
}

func TestAnswerNilStoreUsesEmptyContext(t *testing.T) {
	model := &fakeModel{answer: "ok"}
	service := New(nil, model, Config{}, discardLogger())
	if _, err := service.Answer(context.Background(), "question"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(model.prompts[0], "No matching incidents") {
		t.Fatal("expected empty-context marker")
	}
}

func TestAnswerModelFailureIsHard(t *testing.T) {
	contextStore := &fakeContextStore{}
	model := &fakeModel{err: errors.New("upstream timeout")}
	service := New(contextStore, model, Config{}, discardLogger())
	if _, err := service.Answer(context.Background(), "question"); err == nil {
		t.Fatal("expected hard failure when model call fails")
	}
}

func TestAnswerCapsContextRows(t *testing.T) {
	incidents := make([]store.Incident, 20)
	for i := range incidents {
		incidents[i] = store.Incident{Mine: "M"}
	}
	contextStore := &fakeContextStore{incidents: incidents}
	model := &fakeModel{answer: "ok"}
	service := New(contextStore, model, Config{ContextRows: 7}, discardLogger())

	if _, err := service.Answer(context.Background(), "question"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if contextStore.last.Limit != 7 {
		t.Fatalf("directive limit should be 7, got %d", contextStore.last.Limit)
	}
	// Defence in depth: even an over-returning store is clipped.
	if count := strings.Count(model.prompts[0], "mine: M"); count != 7 {
		t.Fatalf("expected 7 serialized rows, got %d", count)
	}
}

func TestTrendsNarrativeCachesSameSummary(t *testing.T) {
	model := &fakeModel{answer: "narrative"}
	service := New(nil, model, Config{}, discardLogger())
	summary := prompt.TrendsSummary{TotalIncidents: 5, TopStates: []string{"Odisha"}}

	for i := 0; i < 3; i++ {
		got, err := service.TrendsNarrative(context.Background(), summary)
		if err != nil {
			t.Fatalf("trends narrative: %v", err)
		}
		if got != "narrative" {
			t.Fatalf("unexpected narrative: %q", got)
		}
	}
	if model.calls != 1 {
		t.Fatalf("expected a single model call, got %d", model.calls)
	}

	other := prompt.TrendsSummary{TotalIncidents: 6}
	if _, err := service.TrendsNarrative(context.Background(), other); err != nil {
		t.Fatalf("trends narrative: %v", err)
	}
	if model.calls != 2 {
		t.Fatalf("different summary should miss the cache, calls=%d", model.calls)
	}
}

func TestPassthrough(t *testing.T) {
	model := &fakeModel{answer: " raw "}
	service := New(nil, model, Config{}, discardLogger())
	got, err := service.Passthrough(context.Background(), "generate a report")
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if got != "raw" {
		t.Fatalf("unexpected output: %q", got)
	}
	if model.prompts[0] != "generate a report" {
		t.Fatalf("prompt should pass through unmodified: %q", model.prompts[0])
	}
}
