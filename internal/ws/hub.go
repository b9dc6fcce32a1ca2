package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub manages WebSocket subscribers of the notification stream.
type Hub struct {
	name       string
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a new Hub.
func NewHub(name string, logger *zap.Logger) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes hub events. Call this in a goroutine.
// Returns when context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down", zap.String("hub", h.name))
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered",
				zap.String("hub", h.name),
				zap.String("connID", client.connID),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered",
				zap.String("hub", h.name),
				zap.String("connID", client.connID),
			)

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Buffer full, schedule disconnect
					go h.remove(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// remove asks the run loop to drop c, unless the hub is already gone.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// shutdown gracefully closes all client connections.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues payload for every connected client. It never blocks; when
// the hub is saturated the payload is dropped and false is returned.
func (h *Hub) Broadcast(payload []byte) bool {
	select {
	case h.broadcast <- payload:
		return true
	default:
		h.logger.Warn("hub broadcast queue full, dropping message", zap.String("hub", h.name))
		return false
	}
}
