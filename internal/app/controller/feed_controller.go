package controller

import (
	"net/http"

	"github.com/carauction/carauction-backend/internal/middleware"
	ws "github.com/carauction/carauction-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// FeedController streams post events to websocket subscribers.
type FeedController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewFeedController accepts upgrades from allowedOrigins only. An empty list
// allows same-origin requests.
func NewFeedController(hub *ws.Hub, allowedOrigins []string) *FeedController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(origins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins[origin]
		}
	}

	return &FeedController{hub: hub, upgrader: upgrader}
}

// Subscribe upgrades the connection and registers it with the hub
// GET /api/posts/feed
func (ctrl *FeedController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	customerID, _ := middleware.GetUserID(c)
	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, customerID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Feed connection established", map[string]interface{}{
		"customer_id": customerID,
	})
}
