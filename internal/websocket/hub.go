// internal/websocket/hub.go

// Package websocket pushes domain events to connected admin dashboards.
// The hub subscribes to the event bus and fans each event out to every
// connected client as a JSON frame.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"takataka-service/internal/events"

	"go.uber.org/zap"
)

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}
}

// Run processes register/unregister/broadcast until ctx is cancelled.
// Call it in its own goroutine before serving connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("websocket client connected",
				zap.Int64("admin_id", client.adminID),
				zap.Int("clients", h.clientCount()),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected",
				zap.Int64("admin_id", client.adminID),
			)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop the frame rather than block
					// the hub.
					h.logger.Warn("websocket send buffer full, dropping frame",
						zap.Int64("admin_id", client.adminID),
					)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// HandleEvent implements events.Handler. Events are serialized once and
// broadcast to all connected clients.
func (h *Hub) HandleEvent(ctx context.Context, ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event for broadcast",
			zap.String("event_type", string(ev.Type)),
			zap.Error(err),
		)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("websocket broadcast buffer full, dropping event",
			zap.String("event_type", string(ev.Type)),
		)
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
