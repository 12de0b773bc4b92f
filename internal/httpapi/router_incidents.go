package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/khanijo/minewatch/internal/store"
)

func (r *router) handleIncidents(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.handleIncidentsList(w, req)
	case http.MethodPost:
		r.handleIncidentsCreate(w, req)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (r *router) handleIncidentsList(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "incident store is unavailable"})
		return
	}
	incidents, err := r.deps.Store.ListIncidents(req.Context())
	if err != nil {
		r.deps.Logger.Error("failed to list incidents", "error", err)
		store.ReportError(r.deps.Store, r.deps.Logger, "/api/v1/incidents", "list incidents failed", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch incidents"})
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (r *router) handleIncidentsCreate(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "incident store is unavailable"})
		return
	}
	var payload store.InsertIncidentInput
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	created, err := r.deps.Store.InsertIncident(req.Context(), payload)
	if err != nil {
		r.deps.Logger.Error("failed to insert incident", "error", err)
		store.ReportError(r.deps.Store, r.deps.Logger, "/api/v1/incidents", "insert incident failed", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to insert incident"})
		return
	}
	if r.deps.Hub != nil {
		r.deps.Hub.Broadcast(created)
	}
	writeJSON(w, http.StatusCreated, created)
}
