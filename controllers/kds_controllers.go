package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/club-manager/kds"
	"github.com/yeremiapane/club-manager/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// FloorFeedHandler -> endpoint WebSocket untuk display lantai
func FloorFeedHandler(hub *kds.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.DefaultQuery("role", "display")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.ErrorLogger.Warnf("WebSocket upgrade failed: %v", err)
			return
		}

		hub.RegisterClient(ws, role)
		utils.InfoLogger.Infof("Floor display connected (%s), %d online", role, hub.ClientCount())

		// Client hanya menerima; baca sampai koneksi putus
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.UnregisterClient(ws)
	}
}
