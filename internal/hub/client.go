package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Role says which page a client is.
type Role string

const (
	RolePanel   Role = "panel"
	RoleSurface Role = "surface"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RolePanel || r == RoleSurface }

// Client is one websocket connection attached to a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	role      Role
	// send is closed by the owning session's loop only.
	send chan []byte
}

// NewClient creates a Client for conn.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, role Role) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		role:      role,
		send:      make(chan []byte, 256),
	}
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// Deliver queues payload for writing without blocking.
func (c *Client) Deliver(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) logEntry() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"session_id": c.sessionID, "role": c.role})
}

// ReadPump forwards frames from the connection to the hub. It runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.QueueMessageWait(HubMessage{Type: MessageUnregister, SessionID: c.sessionID, Client: c}, time.Second)
		c.conn.Close()
		c.logEntry().Info("readPump exited, client unregistered")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logEntry().WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				c.logEntry().Debug("WebSocket connection closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logEntry().Debugf("Ignoring non-text message type: %d", messageType)
			continue
		}
		c.hub.QueueMessage(HubMessage{
			Type:      MessageInput,
			SessionID: c.sessionID,
			Client:    c,
			RawData:   message,
		})
	}
}

// WritePump writes queued frames and pings to the connection. It runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logEntry().Debug("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Session closed the channel: detached, replaced or session ended.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logEntry().WithError(err).Warn("Failed to write message to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logEntry().WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}

func (c *Client) SessionID() string { return c.sessionID }
func (c *Client) Role() Role        { return c.role }
func (c *Client) CloseConn() {
	if c.conn != nil {
		c.conn.Close()
	}
}
