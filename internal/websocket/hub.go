package websocket

import (
	"encoding/json"
	"sync"

	"notas-client/internal/dto"
	"notas-client/internal/pkg/logger"
)

// Hub fans state snapshots out to connected view clients. A snapshot is the
// whole truth; clients render it and keep no incremental state.
type Hub struct {
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "View client connected", nil)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastState sends the snapshot to every connected client. A client whose
// buffer is full is dropped; it will reconnect and fetch fresh state.
func (h *Hub) BroadcastState(snapshot dto.StateSnapshot) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "state",
		"data": snapshot,
	})
	if err != nil {
		h.logger.Error("Hub", "Marshalling snapshot", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	var stale []*Client
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
}
