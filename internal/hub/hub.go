package hub

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Minimum gap between two registry touches of the same session.
	touchInterval = 30 * time.Second

	// How long a closed session ID keeps refusing registers queued before it closed.
	endedRetention = time.Minute
)

// MessageType is the kind of a HubMessage.
type MessageType string

const (
	MessageRegister   MessageType = "register"
	MessageUnregister MessageType = "unregister"
	MessageInput      MessageType = "input"
)

// HubMessage is what clients and handlers queue to the hub.
type HubMessage struct {
	Type      MessageType
	SessionID string
	Client    *Client
	RawData   []byte
}

// SessionToucher records session activity in the registry.
type SessionToucher interface {
	TouchSession(ctx context.Context, id string) error
}

// Hub routes client traffic to per-session event loops.
type Hub struct {
	messageChan chan HubMessage
	quit        chan struct{}
	stopOnce    sync.Once

	sessions   map[string]*Session
	ended      map[string]time.Time
	sessionsMu sync.RWMutex

	defaultColor domain.Color
	toucher      SessionToucher
	log          *logrus.Entry
}

// NewHub creates a Hub. New sessions start with defaultColor selected.
func NewHub(defaultColor domain.Color, toucher SessionToucher) *Hub {
	if toucher == nil {
		panic("SessionToucher cannot be nil for Hub")
	}
	return &Hub{
		messageChan:  make(chan HubMessage, 512),
		quit:         make(chan struct{}),
		sessions:     make(map[string]*Session),
		ended:        make(map[string]time.Time),
		defaultColor: defaultColor,
		toucher:      toucher,
		log:          logrus.WithField("component", "hub"),
	}
}

// Run processes queued messages until Stop is called. Run it in its own goroutine.
func (h *Hub) Run() {
	h.log.Info("Hub is running...")
	for {
		select {
		case msg := <-h.messageChan:
			h.handle(msg)
		case <-h.quit:
			h.log.Info("Hub is shutting down...")
			return
		}
	}
}

func (h *Hub) handle(msg HubMessage) {
	logCtx := h.log.WithFields(logrus.Fields{"session_id": msg.SessionID, "message_type": msg.Type})
	switch msg.Type {
	case MessageRegister:
		if msg.Client == nil {
			logCtx.Error("Attempted to register a nil client")
			return
		}
		s := h.sessionFor(msg.SessionID)
		if s == nil {
			logCtx.Info("Register for a closed session refused")
			reject(msg.Client)
			return
		}
		if !s.enqueue(sessionEvent{typ: eventAttach, client: msg.Client}, time.Second) {
			logCtx.Warn("Session not accepting clients, closing connection")
			reject(msg.Client)
		}
	case MessageUnregister:
		if s := h.lookup(msg.SessionID); s != nil {
			s.enqueue(sessionEvent{typ: eventDetach, client: msg.Client}, time.Second)
		}
	case MessageInput:
		s := h.lookup(msg.SessionID)
		if s == nil {
			logCtx.Debug("Input for unknown session dropped")
			return
		}
		if !s.enqueue(sessionEvent{typ: eventInput, client: msg.Client, data: msg.RawData}, 0) {
			logCtx.Warn("Session event queue full, input dropped")
		}
	default:
		logCtx.Warn("Hub received unknown message type")
	}
}

// reject closes a client that was never attached to a session.
func reject(c *Client) {
	close(c.send)
	c.CloseConn()
}

// sessionFor returns the live session with id, starting one if needed. It
// returns nil for a session closed within endedRetention.
func (h *Hub) sessionFor(id string) *Session {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	if s, ok := h.sessions[id]; ok {
		return s
	}
	if _, ok := h.ended[id]; ok {
		return nil
	}
	s := newSession(id, h.defaultColor, h.toucher)
	h.sessions[id] = s
	go s.run()
	h.log.WithField("session_id", id).Info("Session started")
	return s
}

func (h *Hub) lookup(id string) *Session {
	h.sessionsMu.RLock()
	defer h.sessionsMu.RUnlock()
	return h.sessions[id]
}

// QueueMessage queues msg without blocking. It returns false when the queue
// is full or the hub has stopped.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		h.log.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"session_id":   msg.SessionID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// QueueMessageWait queues msg, waiting up to timeout for room in the queue.
func (h *Hub) QueueMessageWait(msg HubMessage, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case h.messageChan <- msg:
		return true
	case <-h.quit:
		return false
	case <-timer.C:
		h.log.WithField("session_id", msg.SessionID).Warnf("Timeout queueing %s message", msg.Type)
		return false
	}
}

// GetActiveSessionIDs lists the sessions with a running event loop.
func (h *Hub) GetActiveSessionIDs() []string {
	h.sessionsMu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.sessionsMu.RUnlock()
	sort.Strings(ids)
	return ids
}

// SessionStatus describes a live session.
type SessionStatus struct {
	PanelConnected   bool      `json:"panel_connected"`
	SurfaceConnected bool      `json:"surface_connected"`
	LastActive       time.Time `json:"last_active"`
}

// Status reports on a live session; ok is false when it is not running here.
func (h *Hub) Status(id string) (SessionStatus, bool) {
	s := h.lookup(id)
	if s == nil {
		return SessionStatus{}, false
	}
	return s.status(), true
}

// CloseSession stops a session's event loop and disconnects its clients.
// Registers for id that are still queued are refused afterwards.
func (h *Hub) CloseSession(id string) bool {
	now := time.Now()
	h.sessionsMu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	for endedID, at := range h.ended {
		if now.Sub(at) > endedRetention {
			delete(h.ended, endedID)
		}
	}
	h.ended[id] = now
	h.sessionsMu.Unlock()
	if !ok {
		return false
	}
	s.stop()
	h.log.WithField("session_id", id).Info("Session closed")
	return true
}

// Stop closes every session and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		for _, id := range h.GetActiveSessionIDs() {
			h.CloseSession(id)
		}
		close(h.quit)
	})
}
