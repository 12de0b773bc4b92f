package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// handleRealtimeWS upgrades to a websocket and streams newly stored
// incidents until the client goes away.
func (r *router) handleRealtimeWS(w http.ResponseWriter, req *http.Request) {
	if r.deps.Hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "realtime feed is unavailable"})
		return
	}

	allowedOrigin := r.deps.Config.AllowedOrigin
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return req.Header.Get("Origin") == allowedOrigin
		},
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := r.deps.Hub.Subscribe()
	defer cancel()

	// Reader only detects the close; inbound frames are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-closed:
			return
		case <-req.Context().Done():
			return
		}
	}
}
