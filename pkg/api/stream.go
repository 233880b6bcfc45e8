// Package api pkg/api/stream.go pushes item results to websocket
// subscribers as they are published.
package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mfreeman451/checkmate/pkg/engine"
)

const streamWriteTimeout = 5 * time.Second

type streamHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	closed   bool
}

func newStreamHub() *streamHub {
	return &streamHub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards connect cross-origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *streamHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)

		return
	}

	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()

		if err := conn.Close(); err != nil {
			log.Printf("Error closing websocket: %v", err)
		}

		return
	}

	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain control frames; drop the client when its read side dies.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)

				return
			}
		}
	}()
}

func (h *streamHub) broadcast(res engine.ItemResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			h.remove(conn)

			continue
		}

		if err := conn.WriteJSON(res); err != nil {
			log.Printf("Dropping slow stream client: %v", err)
			h.remove(conn)
		}
	}
}

func (h *streamHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remove(conn)
}

// remove must be called with the lock held.
func (h *streamHub) remove(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}

	delete(h.clients, conn)

	if err := conn.Close(); err != nil {
		log.Printf("Error closing websocket: %v", err)
	}
}

func (h *streamHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for conn := range h.clients {
		h.remove(conn)
	}
}
