package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/khanijo/minewatch/internal/config"
	"github.com/khanijo/minewatch/internal/health"
	"github.com/khanijo/minewatch/internal/prompt"
	"github.com/khanijo/minewatch/internal/realtime"
	"github.com/khanijo/minewatch/internal/store"
)

// ChatService is the pipeline surface the handlers depend on.
type ChatService interface {
	Answer(ctx context.Context, message string) (string, error)
	TrendsNarrative(ctx context.Context, summary prompt.TrendsSummary) (string, error)
	Passthrough(ctx context.Context, rawPrompt string) (string, error)
}

type Dependencies struct {
	Config    config.Config
	Store     *store.Store // nil when persistence is disabled
	Chat      ChatService
	Hub       *realtime.Hub
	Health    *health.Registry
	Logger    *slog.Logger
	StartedAt time.Time
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now().UTC()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/incidents", rt.handleIncidents)
	mux.HandleFunc("/api/v1/chat", rt.handleChat)
	mux.HandleFunc("/api/v1/trends", rt.handleTrends)
	mux.HandleFunc("/api/v1/reports", rt.handleReports)
	mux.HandleFunc("/api/v1/realtime", rt.handleRealtimePrompt)
	mux.HandleFunc("/api/v1/realtime/ws", rt.handleRealtimeWS)
	mux.HandleFunc("/api/v1/settings", rt.handleSettings)
	mux.HandleFunc("/api/v1/admin/status", rt.handleAdminStatus)
	mux.HandleFunc("/api/v1/admin/action", rt.handleAdminAction)
	mux.HandleFunc("/api/v1/home", rt.handleHome)
	return withCORS(deps.Config.AllowedOrigin, mux)
}

func withCORS(allowedOrigin string, next http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
