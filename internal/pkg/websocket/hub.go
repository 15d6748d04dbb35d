package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/pkg/logger"
	"github.com/arda/classplanner/internal/pkg/notification"
)

// SessionEventMessage is the wire format pushed to subscribed clients.
type SessionEventMessage struct {
	Event     string               `json:"event"`
	Session   *models.ClassSession `json:"session"`
	Timestamp time.Time            `json:"timestamp"`
}

type broadcastMessage struct {
	cohort  string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts session events
// to them. Clients may subscribe to a single cohort or, with an empty
// cohort, to everything.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Close stops the Run loop and disconnects all clients.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// Run processes register/unregister/broadcast events. Call in a
// goroutine at startup.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug().Str("clientID", client.id).Str("cohort", client.cohort).Msg("Websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Debug().Str("clientID", client.id).Msg("Websocket client unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.cohort != "" && client.cohort != message.cohort {
					continue
				}
				select {
				case client.send <- message.payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// SessionEvent implements notification.Notifier by broadcasting the
// event to every connected client subscribed to the session's cohort.
// Failures are logged and swallowed.
func (h *Hub) SessionEvent(session *models.ClassSession, kind notification.EventKind) {
	payload, err := json.Marshal(SessionEventMessage{
		Event:     string(kind),
		Session:   session,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Failed to encode session event for broadcast")
		return
	}

	select {
	case h.broadcast <- broadcastMessage{cohort: session.CohortKey(), payload: payload}:
	default:
		logger.Warn().Int64("sessionID", session.ID).Msg("Websocket broadcast queue full, dropping session event")
	}
}
