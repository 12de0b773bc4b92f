package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/khanijo/minewatch/internal/prompt"
	"github.com/khanijo/minewatch/internal/store"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (r *router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat service is unavailable"})
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	answer, err := r.deps.Chat.Answer(req.Context(), message)
	if err != nil {
		r.deps.Logger.Error("chat pipeline failed", "error", err)
		store.ReportError(r.deps.Store, r.deps.Logger, "/api/v1/chat", "chat generation failed", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"error":   "chat generation failed",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "out": answer})
}

type trendsRequest struct {
	Summary *prompt.TrendsSummary `json:"summary"`
}

func (r *router) handleTrends(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat service is unavailable"})
		return
	}

	var payload trendsRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if payload.Summary == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "summary is required"})
		return
	}

	narrative, err := r.deps.Chat.TrendsNarrative(req.Context(), *payload.Summary)
	if err != nil {
		r.deps.Logger.Error("trends narrative failed", "error", err)
		store.ReportError(r.deps.Store, r.deps.Logger, "/api/v1/trends", "trends generation failed", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"error":   "trends generation failed",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"out": map[string]string{"summary": narrative},
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (r *router) handleReports(w http.ResponseWriter, req *http.Request) {
	r.handlePassthrough(w, req, "/api/v1/reports")
}

func (r *router) handleRealtimePrompt(w http.ResponseWriter, req *http.Request) {
	r.handlePassthrough(w, req, "/api/v1/realtime")
}

func (r *router) handlePassthrough(w http.ResponseWriter, req *http.Request, endpoint string) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat service is unavailable"})
		return
	}

	var payload promptRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	rawPrompt := strings.TrimSpace(payload.Prompt)
	if rawPrompt == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "prompt is required"})
		return
	}

	answer, err := r.deps.Chat.Passthrough(req.Context(), rawPrompt)
	if err != nil {
		r.deps.Logger.Error("passthrough generation failed", "endpoint", endpoint, "error", err)
		store.ReportError(r.deps.Store, r.deps.Logger, endpoint, "generation failed", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"error":   "generation failed",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "out": answer})
}
