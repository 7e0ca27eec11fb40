package ws

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan userMessage
	mutex      sync.RWMutex
	logger     *zap.Logger
}

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		outbound:   make(chan userMessage, 1024),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("ws client connected", zap.Int("total_clients", total))

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("ws client disconnected", zap.Int("total_clients", total))

		case msg := <-h.outbound:
			h.mutex.RLock()
			targets := make([]*Client, 0, 4)
			for c := range h.clients {
				if c.userID == msg.userID {
					targets = append(targets, c)
				}
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser queues a payload for every connection the user currently holds.
// Dropped when the buffer is full; events are advisory, clients re-fetch over
// HTTP anyway.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.outbound <- userMessage{userID: userID, payload: payload}:
	default:
		h.logger.Warn("ws send dropped", zap.String("user_id", userID.String()))
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
