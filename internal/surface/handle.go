// Package surface holds the controller's side of the map surface: a weak
// handle used to deliver messages, and a reference model of the surface itself.
package surface

import (
	"sync"

	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Target receives encoded protocol messages. Deliver must not block; it
// returns false when the payload could not be queued.
type Target interface {
	Deliver(payload []byte) bool
}

// Handle is a non-owning reference to the map surface. The surface's lifecycle
// belongs to whoever attaches it; until then, and after it detaches, sends are
// dropped.
type Handle struct {
	mu     sync.RWMutex
	target Target
	log    *logrus.Entry
}

// NewHandle returns a Handle with nothing attached.
func NewHandle(log *logrus.Entry) *Handle {
	if log == nil {
		log = logrus.WithField("component", "surface_handle")
	}
	return &Handle{log: log}
}

// Attach makes t the live surface, replacing any previous one.
func (h *Handle) Attach(t Target) {
	h.mu.Lock()
	h.target = t
	h.mu.Unlock()
}

// Detach clears the reference if t is still the live surface.
func (h *Handle) Detach(t Target) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.target != t {
		return false
	}
	h.target = nil
	return true
}

// Live reports whether a surface is attached.
func (h *Handle) Live() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.target != nil
}

// Send encodes msg and hands it to the live surface. There is no
// acknowledgement and no retry.
func (h *Handle) Send(msg protocol.Message) {
	payload, err := protocol.Encode(msg)
	if err != nil {
		h.log.WithError(err).Error("Failed to encode message for map surface")
		return
	}

	h.mu.RLock()
	target := h.target
	h.mu.RUnlock()

	if target == nil {
		h.log.WithField("kind", msg.Kind()).Debug("Map surface not attached, message dropped")
		return
	}
	if !target.Deliver(payload) {
		h.log.WithField("kind", msg.Kind()).Warn("Map surface send buffer full, message dropped")
	}
}
