package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/khanijo/minewatch/internal/settings"
)

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "store": "disabled"})
		return
	}
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleHome(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "minewatch",
		"message": "Mining-accident incident dashboard API",
	})
}

func (r *router) handleAdminStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	payload := map[string]any{
		"status":         "ok",
		"environment":    r.deps.Config.Environment,
		"uptime_seconds": int64(time.Since(r.deps.StartedAt).Seconds()),
	}
	if r.deps.Health != nil {
		snapshot := r.deps.Health.Snapshot(2 * time.Minute)
		payload["status"] = snapshot.Overall
		payload["components"] = snapshot.Components
	}
	writeJSON(w, http.StatusOK, payload)
}

type adminActionRequest struct {
	Action string `json:"action"`
}

func (r *router) handleAdminAction(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var payload adminActionRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	action := strings.TrimSpace(payload.Action)
	if action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}
	// Acknowledged but intentionally not executed; admin actions have
	// no backing implementation yet.
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"action":  action,
		"applied": false,
	})
}

func (r *router) handleSettings(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		loaded, err := settings.Load(r.deps.Config.SettingsPath)
		if err != nil {
			r.deps.Logger.Error("failed to load settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load settings"})
			return
		}
		writeJSON(w, http.StatusOK, loaded)
	case http.MethodPost:
		var payload settings.Settings
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := settings.Save(r.deps.Config.SettingsPath, payload); err != nil {
			r.deps.Logger.Error("failed to save settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}
