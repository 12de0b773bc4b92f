// Package chat runs the question-answering pipeline: classify the
// message into a query directive, retrieve a bounded incident context,
// assemble the prompt, invoke the model and relay its answer verbatim.
package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/khanijo/minewatch/internal/intent"
	"github.com/khanijo/minewatch/internal/llm"
	"github.com/khanijo/minewatch/internal/prompt"
	"github.com/khanijo/minewatch/internal/store"
)

// ContextStore is the slice of the incident store the pipeline needs.
type ContextStore interface {
	QueryIncidents(ctx context.Context, directive intent.Directive) ([]store.Incident, error)
}

type Config struct {
	ContextRows    int
	MinYear        int
	MaxYear        int
	TrendsCacheTTL time.Duration
}

type Service struct {
	contextStore ContextStore
	model        llm.Client
	opts         intent.Options
	trendsCache  *gocache.Cache
	logger       *slog.Logger
}

// New wires the pipeline. contextStore may be nil when persistence is
// disabled; every question then runs against an empty context.
func New(contextStore ContextStore, model llm.Client, cfg Config, logger *slog.Logger) *Service {
	if cfg.ContextRows <= 0 {
		cfg.ContextRows = 7
	}
	if cfg.TrendsCacheTTL <= 0 {
		cfg.TrendsCacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		contextStore: contextStore,
		model:        model,
		opts: intent.Options{
			MinYear: cfg.MinYear,
			MaxYear: cfg.MaxYear,
			Limit:   cfg.ContextRows,
		},
		trendsCache: gocache.New(cfg.TrendsCacheTTL, cfg.TrendsCacheTTL),
		logger:      logger,
	}
}

// Answer runs the full pipeline for one chat message. A context-query
// failure degrades to an empty context; a model failure is returned to
// the caller as a hard error.
func (s *Service) Answer(ctx context.Context, message string) (string, error) {
	directive := intent.Classify(message, s.opts)

	rows := []store.Incident{}
	if s.contextStore != nil {
		queried, err := s.contextStore.QueryIncidents(ctx, directive)
		if err != nil {
			s.logger.Warn("context query failed, answering with empty context",
				"error", err, "sort_by", string(directive.SortBy))
		} else {
			rows = queried
		}
	}
	if len(rows) > s.opts.Limit {
		rows = rows[:s.opts.Limit]
	}

	answer, err := s.model.Generate(ctx, prompt.BuildChat(rows, message))
	if err != nil {
		return "", fmt.Errorf("model invocation: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// TrendsNarrative generates a short narrative over aggregate
// statistics. Identical summaries within the cache TTL reuse the
// previous narrative instead of paying for another model call.
func (s *Service) TrendsNarrative(ctx context.Context, summary prompt.TrendsSummary) (string, error) {
	key := trendsCacheKey(summary)
	if cached, ok := s.trendsCache.Get(key); ok {
		return cached.(string), nil
	}
	answer, err := s.model.Generate(ctx, prompt.BuildTrends(summary))
	if err != nil {
		return "", fmt.Errorf("model invocation: %w", err)
	}
	answer = strings.TrimSpace(answer)
	s.trendsCache.Set(key, answer, gocache.DefaultExpiration)
	return answer, nil
}

// Passthrough relays a raw prompt to the model with no context
// retrieval (reports and realtime panels).
func (s *Service) Passthrough(ctx context.Context, rawPrompt string) (string, error) {
	answer, err := s.model.Generate(ctx, rawPrompt)
	if err != nil {
		return "", fmt.Errorf("model invocation: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func trendsCacheKey(summary prompt.TrendsSummary) string {
	encoded, err := json.Marshal(summary)
	if err != nil {
		return "trends:unkeyed"
	}
	digest := sha256.Sum256(encoded)
	return "trends:" + hex.EncodeToString(digest[:])
}
