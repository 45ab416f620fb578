package buyer

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kissariya_back_end/internal/cart"
	"kissariya_back_end/internal/middleware"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	// Les origines sont filtrées en amont par le middleware CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message poussé sur le websocket du panier.
type streamMessage struct {
	Type         string          `json:"type"`
	Message      string          `json:"message,omitempty"`
	Cart         *cart.Snapshot  `json:"cart,omitempty"`
	Notification json.RawMessage `json:"notification,omitempty"`
}

// GET /api/cart/ws
// Pousse l'état du panier à chaque sauvegarde, depuis n'importe quel onglet.
func (h *Handler) Stream(c *gin.Context) {
	sessionID := middleware.CartID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session panier manquante"})
		return
	}
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Synchronisation indisponible"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("❌ Erreur upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redis.Subscribe(ctx, cart.RedisKey(sessionID), cart.EventsChannel(sessionID))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Warn("❌ Abonnement Redis panier", zap.String("session", sessionID), zap.Error(err))
		return
	}
	ch := pubsub.Channel()

	// Détecte la fermeture côté client.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(streamMessage{Type: "connected", Message: "Synchronisation panier activée"}); err != nil {
		return
	}
	if !h.pushSnapshot(c, conn, sessionID) {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Channel == cart.EventsChannel(sessionID) {
				if err := conn.WriteJSON(streamMessage{Type: "notification", Notification: json.RawMessage(msg.Payload)}); err != nil {
					return
				}
				continue
			}
			if msg.Payload == cart.SyncUpdated || msg.Payload == cart.SyncCleared {
				if !h.pushSnapshot(c, conn, sessionID) {
					return
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (h *Handler) pushSnapshot(c *gin.Context, conn *websocket.Conn, sessionID string) bool {
	snap, err := h.loadSnapshot(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Warn("⚠️ Lecture panier pour synchronisation", zap.Error(err))
		return true
	}
	if err := conn.WriteJSON(streamMessage{Type: "cart_updated", Cart: &snap}); err != nil {
		h.log.Debug("🔌 WebSocket panier fermé", zap.Error(err))
		return false
	}
	return true
}
