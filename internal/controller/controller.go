// Package controller implements the interaction state machine that drives a
// map surface: draw/view mode, paint/erase, color selection and the handling of
// keyboard shortcuts and surface clicks.
//
// A Controller is not safe for concurrent use. Its owner runs every operation
// from a single event loop.
package controller

import (
	"strings"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Surface delivers protocol messages to the map surface. Delivery is
// fire-and-forget.
type Surface interface {
	Send(msg protocol.Message)
}

// Notifier shows a transient notification to the user.
type Notifier interface {
	Notify(n domain.Notification)
}

// Focuser returns keyboard focus to the controller's window.
type Focuser interface {
	Focus()
}

// Controller owns the interaction state of one session.
type Controller struct {
	state     domain.InteractionState
	lastColor domain.Color // never domain.Eraser

	surface  Surface
	notifier Notifier
	focuser  Focuser
	log      *logrus.Entry

	release func()
}

// New returns a Controller in draw mode with defaultColor selected.
func New(surface Surface, notifier Notifier, focuser Focuser, defaultColor domain.Color, log *logrus.Entry) *Controller {
	if surface == nil {
		panic("Surface cannot be nil for Controller")
	}
	if notifier == nil {
		panic("Notifier cannot be nil for Controller")
	}
	if focuser == nil {
		panic("Focuser cannot be nil for Controller")
	}
	if log == nil {
		log = logrus.WithField("component", "controller")
	}
	state := domain.NewInteractionState(defaultColor)
	return &Controller{
		state:     state,
		lastColor: state.CurrentColor,
		surface:   surface,
		notifier:  notifier,
		focuser:   focuser,
		log:       log,
	}
}

// State returns the observable state.
func (c *Controller) State() domain.InteractionState { return c.state }

// LastColor returns the color the eraser toggle restores.
func (c *Controller) LastColor() domain.Color { return c.lastColor }

// ToggleMode switches between draw and view mode and tells the surface.
func (c *Controller) ToggleMode() {
	c.state.IsDrawMode = !c.state.IsDrawMode
	c.surface.Send(protocol.SetDrawMode{IsDrawMode: c.state.IsDrawMode})
	if c.state.IsDrawMode {
		c.notifier.Notify(domain.NotifyDrawMode)
	} else {
		c.notifier.Notify(domain.NotifyMapMode)
	}
	c.log.WithField("draw_mode", c.state.IsDrawMode).Debug("Mode toggled")
}

// ToggleEraser swaps between the eraser and the last paint color. Nothing is
// sent to the surface; erase intent travels in the color of the next addPixel.
func (c *Controller) ToggleEraser() {
	if c.state.CurrentColor.IsEraser() {
		c.state.CurrentColor = c.lastColor
		c.notifier.Notify(domain.NotifyPaintbrush)
	} else {
		c.lastColor = c.state.CurrentColor
		c.state.CurrentColor = domain.Eraser
		c.notifier.Notify(domain.NotifyEraser)
	}
	c.log.WithField("color", c.state.CurrentColor).Debug("Eraser toggled")
}

// SetColor selects value as the current color.
func (c *Controller) SetColor(value domain.Color) {
	c.state.CurrentColor = value
	c.log.WithField("color", value).Debug("Color set")
}

// ClearAll asks the surface to remove every painted cell.
func (c *Controller) ClearAll() {
	c.surface.Send(protocol.ClearPixels{})
	c.notifier.Notify(domain.NotifyCleared)
}

// OnMapPointerEvent handles an inbound surface message. Only a mapClick with
// numeric coordinates, received in draw mode, produces an addPixel.
func (c *Controller) OnMapPointerEvent(raw []byte) {
	click, ok := protocol.ParseMapClick(raw)
	if !ok {
		return
	}
	if !c.state.IsDrawMode {
		c.log.Debug("Map click ignored in view mode")
		return
	}
	// The click moved focus into the surface; take it back so shortcuts keep working.
	c.focuser.Focus()
	c.surface.Send(protocol.AddPixel{Lat: click.Lat, Lng: click.Lng, Color: c.state.CurrentColor})
}

// OnKeyDown maps the d and e shortcuts. Keys typed into a text input are ignored.
func (c *Controller) OnKeyDown(ev domain.KeyEvent) {
	if ev.FromTextInput() {
		return
	}
	switch strings.ToLower(ev.Key) {
	case "d":
		c.ToggleMode()
	case "e":
		c.ToggleEraser()
	}
}

// OnMapSurfaceReady performs the load-time handshake: the surface is put into
// the default mode whatever the controller's current mode is.
func (c *Controller) OnMapSurfaceReady() {
	c.surface.Send(protocol.SetDrawMode{IsDrawMode: domain.DefaultDrawMode})
	c.log.Info("Map surface ready, draw mode synchronised")
}
