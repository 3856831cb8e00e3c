package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/internal/logger"
	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes admitted alert records to connected websocket clients. It
// plugs into the alert gate as one of its recorders, so every admitted
// alert is broadcast exactly once.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.SugaredLogger
}

// NewHub creates an empty hub; call Run to start the fan-out loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        logger.Named("ws"),
	}
}

// Run serves the hub loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Infow("client connected", "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Infow("client disconnected", "total", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Warnw("client write failed", "error", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Insert implements alert.Recorder: each admitted alert record is
// serialized once and fanned out. A full broadcast queue drops the
// message instead of blocking the gate.
func (h *Hub) Insert(rec *types.AlertRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleAlertSocket upgrades the connection and parks it in the hub until
// the client goes away.
func (s *Server) handleAlertSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	select {
	case s.hub.register <- conn:
	case <-s.hub.done:
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			select {
			case s.hub.unregister <- conn:
			case <-s.hub.done:
			}
			return
		}
	}
}
