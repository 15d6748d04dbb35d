package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arda/classplanner/internal/pkg/logger"
)

// Handler upgrades HTTP requests to websocket connections on the
// session event feed.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleConnection godoc
// @Summary Subscribe to the real-time session event feed
// @Description Upgrades the HTTP connection to a WebSocket and streams session lifecycle events (created, cancelled, rescheduled, materials added). Pass className and optionally section to receive events for a single cohort only.
// @Tags websocket
// @Security BearerAuth
// @Param className query string false "Class name to subscribe to"
// @Param section query string false "Section within the class"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Router /ws/sessions [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	cohort := ""
	if className := c.Query("className"); className != "" {
		cohort = className
		if section := c.Query("section"); section != "" {
			cohort += "/" + section
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		cohort: cohort,
	}
	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	logger.Info().
		Str("clientID", client.id).
		Str("cohort", cohort).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
