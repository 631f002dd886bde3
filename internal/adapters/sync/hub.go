// Package sync is the bridge between the tick scheduler and connected
// observers: every successful tick run is broadcast as a JSON summary
// over websocket. The bridge is fire-and-forget; a slow or dead
// observer never affects a tick run.
package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/tycoonsim/tycoon-go/internal/application/simulation"
)

// Hub maintains the set of connected observers and fans broadcasts out
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *slog.Logger
}

// NewHub creates a Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes connection changes and broadcasts until the context is
// cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("sync hub shutting down")
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("observer connected", "remote", client.RemoteAddr())
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("observer disconnected", "remote", client.RemoteAddr())
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Observer cannot keep up; drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishTickSummary serializes the summary and queues it for
// broadcast. Implements simulation.TickNotifier.
func (h *Hub) PublishTickSummary(summary simulation.TickSummary) {
	payload, err := json.Marshal(summary)
	if err != nil {
		h.logger.Error("failed to serialize tick summary", "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("sync broadcast queue full, summary dropped", "tick", summary.Tick)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
