// internal/handlers/events/events_handler.go
package events

import (
	"net/http"

	"takataka-service/internal/middleware"
	ws "takataka-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type EventsHandler struct {
	hub      *ws.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewEventsHandler(hub *ws.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin is enforced by the CORS layer; dashboards
			// connect from a different origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the request to a websocket and attaches the client to
// the live event feed. Auth middleware has already validated the token.
func (h *EventsHandler) Stream(c *gin.Context) {
	adminID := middleware.MustGetAdminID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed",
			zap.Int64("admin_id", adminID),
			zap.Error(err),
		)
		return
	}

	ws.NewClient(h.hub, conn, adminID, h.logger).Start()
}
