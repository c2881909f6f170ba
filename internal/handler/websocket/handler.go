package websocket

import (
	"errors"
	"net/http"

	"github.com/caps24escola/pixel-world/internal/hub"
	"github.com/caps24escola/pixel-world/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler upgrades panel and map surface connections and registers
// them with the hub.
type WebSocketHandler struct {
	upgrader       websocket.Upgrader
	hub            *hub.Hub
	sessionService *service.SessionService
}

// NewWebSocketHandler creates a WebSocketHandler.
func NewWebSocketHandler(h *hub.Hub, sessionService *service.SessionService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if sessionService == nil {
		panic("SessionService cannot be nil for WebSocketHandler")
	}
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Panel and map page belong to the same local session; any origin is accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub:            h,
		sessionService: sessionService,
	}
}

// HandleConnection handles GET /ws/session/:sessionId/:role.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	sessionID := c.Param("sessionId")
	role := hub.Role(c.Param("role"))
	logCtx := logrus.WithFields(logrus.Fields{"session_id": sessionID, "role": role})

	if !role.Valid() {
		logCtx.Warn("WS Handler: Unknown client role")
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown client role"})
		return
	}

	if _, err := h.sessionService.GetSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			logCtx.Warn("WS Handler: Session not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			logCtx.WithError(err).Error("WS Handler: Error checking session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate session"})
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}

	client := hub.NewClient(h.hub, conn, sessionID, role)
	if !h.hub.QueueMessage(hub.HubMessage{Type: hub.MessageRegister, SessionID: sessionID, Client: client}) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}
	client.Run()
	logCtx.Info("WS Handler: Client connected")
}
