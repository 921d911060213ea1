package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent to spectators.
const (
	EventReset           = "reset"
	EventStep            = "step"
	EventRoundResolved   = "round_resolved"
	EventEpisodeFinished = "episode_finished"
)

// WSEvent is the envelope for all spectator messages.
type WSEvent struct {
	Type      string `json:"type"`
	EpisodeID string `json:"episode_id"`
	Data      any    `json:"data"`
}

// WSConn wraps a WebSocket connection with its outbound queue.
type WSConn struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans episode events out to all connected spectators.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[*WSConn]bool)}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and closes its queue.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	close(c.send)
}

// Broadcast sends an event to every spectator. A spectator whose queue is
// full misses the event rather than stalling the training loop.
func (h *Hub) Broadcast(event WSEvent) {
	h.mu.RLock()
	n := len(h.connections)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("episodeId", event.EpisodeID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("episodeId", event.EpisodeID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the number of active spectator connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
