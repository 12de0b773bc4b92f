// Package realtime fans newly stored incidents out to live dashboard
// subscribers.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/khanijo/minewatch/internal/store"
)

const subscriberBuffer = 16

type Hub struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[chan []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener. The returned cancel func must be
// called when the listener goes away.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pushes an incident to every subscriber without blocking;
// slow consumers miss the message rather than stalling the writer.
func (h *Hub) Broadcast(incident store.Incident) {
	payload, err := json.Marshal(map[string]any{
		"event":    "incident.created",
		"incident": incident,
	})
	if err != nil {
		h.logger.Error("marshal realtime event", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- payload:
		default:
			h.logger.Warn("dropping realtime event for slow subscriber")
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
