// internal/httpserver/events.go
//
// Websocket narration feed. Every narration the session emits is broadcast to
// all connected presentation clients. The feed is observe-only: clients drive
// the game through the HTTP endpoints.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pcarver/hilo/internal/session"
)

var upgrader = websocket.Upgrader{
	// Origin is already constrained by the CORS middleware; the websocket
	// handshake accepts the same single configured client.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans narration events out to connected websocket clients.
// Implements session.Publisher.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// Publish sends the event to every client, dropping connections that fail.
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("dropping dead event client")
			_ = c.Close()
			delete(h.conns, c)
		}
	}
}

// add registers a connection with the hub.
func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

// remove unregisters and closes a connection.
func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.Close()
}

// handleEvents upgrades the request and keeps the connection registered until
// the client goes away. Inbound messages are discarded.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.hub.add(conn)

	// Reader loop exists only to detect disconnects.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
