package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"freight-dispatch-api-server/internal/auth"
	"freight-dispatch-api-server/internal/socket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	Hub       *socket.Hub
	JWTSecret []byte
	Log       logrus.FieldLogger
}

// clientMessage is the only inbound frame shape: subscribe to or drop live
// updates for one trip.
type clientMessage struct {
	Action string `json:"action"` // "watch" or "unwatch"
	TripID string `json:"tripID"`
}

// ServeWs upgrades the connection and pumps subscription messages until the
// client disconnects. Browsers cannot set headers on the upgrade request, so
// the JWT arrives as a token query parameter instead.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "A token query parameter is required"})
		return
	}
	claims, err := auth.ParseJWT(h.JWTSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.WithError(err).Error("websocket upgrade failed")
		return
	}

	actorID := claims.ActorID
	h.Hub.Register(actorID, conn)
	defer func() {
		h.Hub.Unregister(actorID)
		conn.Close()
	}()

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.WithField("actor_id", actorID).WithError(err).Warn("websocket read failed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.TripID == "" {
			continue
		}
		switch msg.Action {
		case "watch":
			h.Hub.Watch(actorID, msg.TripID)
		case "unwatch":
			h.Hub.Unwatch(actorID, msg.TripID)
		}
	}
}
