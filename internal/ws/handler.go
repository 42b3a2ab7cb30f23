package ws

import (
	"net/http"

	"nexussync/internal/collab"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades dashboard connections and attaches them to the
// collaboration coordinator.
type Handler struct {
	upgrader    websocket.Upgrader
	coordinator *collab.Coordinator
	log         zerolog.Logger
}

func NewHandler(coordinator *collab.Coordinator, log zerolog.Logger) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured frontend origin in production
				return true
			},
		},
		coordinator: coordinator,
		log:         log.With().Str("component", "ws").Logger(),
	}
}

// HandleConnection upgrades the request and starts the client pumps. The
// auth middleware has already placed the user id in the context.
func (h *Handler) HandleConnection(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.log.Debug().Str("user_id", userID).Msg("websocket connected")
	NewClient(conn, h.coordinator, userID, h.log).Run()
}
