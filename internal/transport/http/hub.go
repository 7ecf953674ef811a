package http

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/domain"
)

// DefaultQueueSize bounds how many undelivered events a single client may hold.
const DefaultQueueSize = 64

// Hub is the broadcast channel shared by every websocket client. Delivery is
// best effort and at most once: a client whose queue is full misses the event,
// nothing is replayed.
type Hub struct {
	queueSize int

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{queueSize: queueSize, clients: make(map[*client]struct{})}
}

// Broadcast implements app.Broadcaster.
func (h *Hub) Broadcast(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("marshal broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		h.enqueueLocked(c, data, event.Type)
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, h.queueSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	log.Debug().Str("client_id", c.id).Int("clients", total).Msg("client joined")
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	log.Debug().Str("client_id", c.id).Int("clients", len(h.clients)).Msg("client left")
}

// sendTo delivers an event to one client only.
func (h *Hub) sendTo(c *client, event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("marshal client event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, data, event.Type)
	}
}

// enqueueLocked must run with h.mu held so send is never closed underneath it.
func (h *Hub) enqueueLocked(c *client, data []byte, eventType string) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("client_id", c.id).Str("event", eventType).Msg("client queue full, dropping event")
	}
}
