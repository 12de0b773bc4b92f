// Package health tracks the liveness of the runtime's long-running
// pieces so the admin surface can report on them.
package health

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateStopped  = "stopped"
	StateStale    = "stale"
)

type ComponentStatus struct {
	Name           string `json:"name"`
	State          string `json:"state"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	LastBeatAtUnix int64  `json:"last_beat_at_unix,omitempty"`
	Stale          bool   `json:"stale,omitempty"`
}

type Snapshot struct {
	GeneratedAtUnix int64             `json:"generated_at_unix"`
	Overall         string            `json:"overall"`
	Components      []ComponentStatus `json:"components"`
}

type record struct {
	state      string
	message    string
	lastError  string
	lastBeatAt time.Time
}

// Registry is a concurrency-safe map of component name to last
// reported state.
type Registry struct {
	mu         sync.RWMutex
	components map[string]record
}

func NewRegistry() *Registry {
	return &Registry{components: map[string]record{}}
}

func (r *Registry) Starting(component, message string) {
	r.set(component, StateStarting, message, nil)
}

// Beat marks a component healthy and refreshes its staleness clock.
func (r *Registry) Beat(component, message string) {
	r.set(component, StateHealthy, message, nil)
}

func (r *Registry) Degrade(component, message string, err error) {
	r.set(component, StateDegraded, message, err)
}

func (r *Registry) Stopped(component, message string) {
	r.set(component, StateStopped, message, nil)
}

func (r *Registry) set(component, state, message string, err error) {
	name := strings.ToLower(strings.TrimSpace(component))
	if name == "" {
		return
	}
	entry := record{
		state:      state,
		message:    strings.TrimSpace(message),
		lastBeatAt: time.Now().UTC(),
	}
	if err != nil {
		entry.lastError = strings.TrimSpace(err.Error())
	}
	r.mu.Lock()
	r.components[name] = entry
	r.mu.Unlock()
}

// Snapshot lists every component sorted by name. Components in a live
// state whose last beat is older than staleAfter get flagged stale.
// The overall state is the worst component state.
func (r *Registry) Snapshot(staleAfter time.Duration) Snapshot {
	now := time.Now().UTC()
	r.mu.RLock()
	defer r.mu.RUnlock()

	components := make([]ComponentStatus, 0, len(r.components))
	for name, entry := range r.components {
		status := ComponentStatus{
			Name:           name,
			State:          entry.state,
			Message:        entry.message,
			Error:          entry.lastError,
			LastBeatAtUnix: entry.lastBeatAt.Unix(),
		}
		if staleAfter > 0 && isLiveState(entry.state) && now.Sub(entry.lastBeatAt) > staleAfter {
			status.State = StateStale
			status.Stale = true
		}
		components = append(components, status)
	}
	sort.Slice(components, func(left, right int) bool {
		return components[left].Name < components[right].Name
	})

	return Snapshot{
		GeneratedAtUnix: now.Unix(),
		Overall:         overallState(components),
		Components:      components,
	}
}

func isLiveState(state string) bool {
	return state == StateStarting || state == StateHealthy
}

func overallState(components []ComponentStatus) string {
	if len(components) == 0 {
		return StateHealthy
	}
	overall := StateHealthy
	for _, component := range components {
		switch component.State {
		case StateDegraded, StateStale:
			return StateDegraded
		case StateStarting:
			overall = StateStarting
		}
	}
	return overall
}
