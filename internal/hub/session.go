package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caps24escola/pixel-world/internal/controller"
	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/dto"
	"github.com/caps24escola/pixel-world/internal/events"
	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/caps24escola/pixel-world/internal/surface"
	"github.com/sirupsen/logrus"
)

type sessionEventType int

const (
	eventAttach sessionEventType = iota
	eventDetach
	eventInput
)

type sessionEvent struct {
	typ    sessionEventType
	client *Client
	data   []byte
}

// Session runs one controller. Every event for the session is handled on a
// single goroutine, so the controller and the attached clients are only ever
// touched from there.
type Session struct {
	id       string
	events   chan sessionEvent
	done     chan struct{}
	stopOnce sync.Once

	// closed and inflight let teardown see every event accepted by enqueue.
	enqueueMu sync.RWMutex
	closed    bool
	inflight  sync.WaitGroup

	dispatcher *events.Dispatcher
	controller *controller.Controller
	handle     *surface.Handle

	panel         *Client
	surfaceClient *Client
	readySeen     bool

	toucher   SessionToucher
	lastTouch time.Time

	panelAttached   atomic.Bool
	surfaceAttached atomic.Bool
	lastActive      atomic.Int64

	log *logrus.Entry
}

func newSession(id string, defaultColor domain.Color, toucher SessionToucher) *Session {
	log := logrus.WithFields(logrus.Fields{"component": "session", "session_id": id})
	s := &Session{
		id:         id,
		events:     make(chan sessionEvent, 256),
		done:       make(chan struct{}),
		dispatcher: events.NewDispatcher(),
		handle:     surface.NewHandle(log.WithField("component", "surface_handle")),
		toucher:    toucher,
		log:        log,
	}
	s.controller = controller.New(s.handle, s, s, defaultColor, log.WithField("component", "controller"))
	s.lastActive.Store(time.Now().UnixNano())
	return s
}

func (s *Session) run() {
	release := s.controller.Mount(s.dispatcher)
	defer release()

	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.done:
			s.teardown()
			return
		}
	}
}

// enqueue hands ev to the session loop. With wait == 0 it never blocks.
// Once stop has run it always returns false.
func (s *Session) enqueue(ev sessionEvent, wait time.Duration) bool {
	s.enqueueMu.RLock()
	if s.closed {
		s.enqueueMu.RUnlock()
		return false
	}
	s.inflight.Add(1)
	s.enqueueMu.RUnlock()
	defer s.inflight.Done()

	if wait <= 0 {
		select {
		case s.events <- ev:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	case <-timer.C:
		return false
	}
}

func (s *Session) stop() {
	s.stopOnce.Do(func() {
		s.enqueueMu.Lock()
		s.closed = true
		s.enqueueMu.Unlock()
		close(s.done)
	})
}

func (s *Session) teardown() {
	// No enqueue starts after stop; once the running ones return, events can be closed.
	go func() {
		s.inflight.Wait()
		close(s.events)
	}()
	// Clients whose attach never ran still own an open send channel.
	for ev := range s.events {
		if ev.typ == eventAttach && ev.client != nil {
			close(ev.client.send)
		}
	}
	if s.panel != nil {
		close(s.panel.send)
		s.panel = nil
		s.panelAttached.Store(false)
	}
	if s.surfaceClient != nil {
		s.handle.Detach(s.surfaceClient)
		close(s.surfaceClient.send)
		s.surfaceClient = nil
		s.surfaceAttached.Store(false)
	}
	s.log.Info("Session loop stopped")
}

func (s *Session) handleEvent(ev sessionEvent) {
	switch ev.typ {
	case eventAttach:
		s.attach(ev.client)
	case eventDetach:
		s.detach(ev.client)
	case eventInput:
		s.input(ev.client, ev.data)
	}
}

func (s *Session) attach(c *Client) {
	logCtx := s.log.WithField("role", c.role)
	switch c.role {
	case RolePanel:
		if s.panel != nil && s.panel != c {
			logCtx.Info("Replacing previously attached panel")
			close(s.panel.send)
		}
		s.panel = c
		s.panelAttached.Store(true)
		s.pushState()
	case RoleSurface:
		if s.surfaceClient != nil && s.surfaceClient != c {
			logCtx.Info("Replacing previously attached map surface")
			close(s.surfaceClient.send)
		}
		s.surfaceClient = c
		s.readySeen = false
		s.handle.Attach(c)
		s.surfaceAttached.Store(true)
	default:
		logCtx.Warn("Refusing client with unknown role")
		close(c.send)
		return
	}
	s.markActive()
	logCtx.Info("Client attached to session")
}

func (s *Session) detach(c *Client) {
	switch {
	case c == nil:
		return
	case c == s.panel:
		s.panel = nil
		s.panelAttached.Store(false)
		close(c.send)
	case c == s.surfaceClient:
		s.handle.Detach(c)
		s.surfaceClient = nil
		s.surfaceAttached.Store(false)
		close(c.send)
	default:
		// Already replaced; its channel was closed then.
		return
	}
	s.log.WithField("role", c.role).Info("Client detached from session")
}

func (s *Session) input(c *Client, data []byte) {
	switch {
	case c != nil && c == s.surfaceClient:
		s.surfaceInput(data)
	case c != nil && c == s.panel:
		s.panelInput(data)
	default:
		s.log.Debug("Input from a client no longer attached, ignored")
		return
	}
	s.markActive()
}

func (s *Session) surfaceInput(data []byte) {
	if protocol.IsReady(data) {
		if s.readySeen {
			s.log.Debug("Duplicate ready signal ignored")
			return
		}
		s.readySeen = true
		s.controller.OnMapSurfaceReady()
		return
	}
	s.dispatcher.Dispatch(events.Event{Kind: events.KindMessage, Data: data})
}

func (s *Session) panelInput(data []byte) {
	var cmd dto.PanelCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.log.WithError(err).Debug("Malformed panel command")
		s.sendToPanel(dto.NewErrorDTO("malformed command"))
		return
	}

	switch cmd.Type {
	case dto.CommandKeyDown:
		s.dispatcher.Dispatch(events.Event{Kind: events.KindKeyDown, Key: cmd.KeyEvent()})
	case dto.CommandToggleMode:
		s.controller.ToggleMode()
	case dto.CommandToggleEraser:
		s.controller.ToggleEraser()
	case dto.CommandSetColor:
		if err := dto.ValidateColor(cmd.Value); err != nil {
			s.log.WithField("value", cmd.Value).Debug("Rejected color input")
			s.sendToPanel(dto.NewErrorDTO("invalid color"))
			return
		}
		s.controller.SetColor(domain.Color(cmd.Value))
	case dto.CommandClearAll:
		s.controller.ClearAll()
	default:
		s.sendToPanel(dto.NewErrorDTO("unknown command"))
		return
	}
	s.pushState()
}

// Notify implements controller.Notifier.
func (s *Session) Notify(n domain.Notification) {
	s.sendToPanel(dto.NewNotificationDTO(n))
}

// Focus implements controller.Focuser.
func (s *Session) Focus() {
	s.sendToPanel(dto.NewFocusDTO())
}

func (s *Session) pushState() {
	s.sendToPanel(dto.NewStateDTO(s.controller.State()))
}

func (s *Session) sendToPanel(v interface{}) {
	if s.panel == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal panel frame")
		return
	}
	if !s.panel.Deliver(payload) {
		s.log.Warn("Panel send buffer full, frame dropped")
	}
}

func (s *Session) markActive() {
	now := time.Now()
	s.lastActive.Store(now.UnixNano())
	if now.Sub(s.lastTouch) < touchInterval {
		return
	}
	s.lastTouch = now
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.toucher.TouchSession(ctx, s.id); err != nil {
			s.log.WithError(err).Debug("Failed to record session activity")
		}
	}()
}

func (s *Session) status() SessionStatus {
	return SessionStatus{
		PanelConnected:   s.panelAttached.Load(),
		SurfaceConnected: s.surfaceAttached.Load(),
		LastActive:       time.Unix(0, s.lastActive.Load()).UTC(),
	}
}
