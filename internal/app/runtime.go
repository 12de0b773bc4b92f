// Package app wires configuration, storage, the model client, and the
// HTTP surface into a single runnable runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/khanijo/minewatch/internal/chat"
	"github.com/khanijo/minewatch/internal/config"
	"github.com/khanijo/minewatch/internal/health"
	"github.com/khanijo/minewatch/internal/httpapi"
	"github.com/khanijo/minewatch/internal/llm"
	"github.com/khanijo/minewatch/internal/llm/gemini"
	"github.com/khanijo/minewatch/internal/llm/openai"
	"github.com/khanijo/minewatch/internal/realtime"
	"github.com/khanijo/minewatch/internal/store"
	"github.com/khanijo/minewatch/internal/watcher"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	model      llm.Client
	chat       *chat.Service
	hub        *realtime.Hub
	health     *health.Registry
	httpServer *http.Server
	alerts     *watcher.Alerts
	inbox      *watcher.Inbox
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	var sqlStore *store.Store
	if cfg.PersistenceEnabled() {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		opened, err := store.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := opened.AutoMigrate(ctx); err != nil {
			opened.Close()
			return nil, err
		}
		sqlStore = opened
	} else {
		logger.Warn("persistence disabled, incidents and error logs will not be stored")
	}

	model, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		if sqlStore != nil {
			sqlStore.Close()
		}
		return nil, err
	}

	var contextStore chat.ContextStore
	if sqlStore != nil {
		contextStore = sqlStore
	}
	chatService := chat.New(contextStore, model, chat.Config{
		ContextRows:    cfg.ChatContextRows,
		MinYear:        cfg.ChatMinYear,
		MaxYear:        cfg.ChatMaxYear,
		TrendsCacheTTL: time.Duration(cfg.TrendsCacheTTLSec) * time.Second,
	}, logger.With("component", "chat"))

	hub := realtime.NewHub(logger.With("component", "realtime"))
	healthRegistry := health.NewRegistry()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Config:    cfg,
		Store:     sqlStore,
		Chat:      chatService,
		Hub:       hub,
		Health:    healthRegistry,
		Logger:    logger.With("component", "httpapi"),
		StartedAt: time.Now().UTC(),
	})

	runtime := &Runtime{
		cfg:    cfg,
		logger: logger,
		store:  sqlStore,
		model:  model,
		chat:   chatService,
		hub:    hub,
		health: healthRegistry,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.AlertsURL != "" && sqlStore != nil {
		extractor, ok := model.(watcher.Extractor)
		if !ok {
			logger.Warn("alert watcher disabled, configured model cannot extract pdfs", "provider", cfg.LLMProvider)
		} else {
			runtime.alerts = watcher.NewAlerts(watcher.AlertsConfig{
				PageURL:      cfg.AlertsURL,
				StatePath:    cfg.AlertsStatePath,
				CronExpr:     cfg.AlertsCron,
				PollInterval: time.Duration(cfg.AlertsPollSec) * time.Second,
				FetchPerSec:  cfg.AlertsFetchPerSec,
			}, sqlStore, extractor, hub, logger.With("component", "alerts"))
		}
	}
	if cfg.InboxDir != "" && sqlStore != nil {
		inbox, err := watcher.NewInbox(cfg.InboxDir, sqlStore, hub, logger.With("component", "inbox"))
		if err != nil {
			runtime.Close()
			return nil, err
		}
		runtime.inbox = inbox
	}

	return runtime, nil
}

func newModelClient(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey: cfg.LLMAPIKey,
			Model:  cfg.LLMModel,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		}, logger.With("component", "llm")), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
