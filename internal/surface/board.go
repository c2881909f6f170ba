package surface

import (
	"sync"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/sirupsen/logrus"
)

// Board is an in-memory map surface. It applies the controller's messages to a
// grid of cells and reports clicks, independent of its own mode.
type Board struct {
	mu       sync.Mutex
	drawMode bool
	cells    domain.BoardState
	applied  int
}

func NewBoard() *Board {
	return &Board{cells: make(domain.BoardState)}
}

// Deliver implements Target. Payloads that are not valid controller messages
// are ignored.
func (b *Board) Deliver(payload []byte) bool {
	if err := b.Receive(payload); err != nil {
		logrus.WithField("component", "board").WithError(err).Debug("Ignoring message")
	}
	return true
}

// Receive decodes and applies one wire message.
func (b *Board) Receive(payload []byte) error {
	msg, err := protocol.Decode(payload)
	if err != nil {
		return err
	}
	b.Apply(msg)
	return nil
}

// Apply updates the board for one message. Surface-originated kinds are ignored.
func (b *Board) Apply(msg protocol.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch m := msg.(type) {
	case protocol.SetDrawMode:
		b.drawMode = m.IsDrawMode
	case protocol.AddPixel:
		key := domain.CellKey(m.Lat, m.Lng)
		if m.Color.IsEraser() {
			delete(b.cells, key)
		} else {
			b.cells[key] = m.Color.String()
		}
	case protocol.ClearPixels:
		b.cells = make(domain.BoardState)
	default:
		return
	}
	b.applied++
}

// Click reports a pointer interaction at (lat, lng). The board's draw mode is
// not consulted; gating belongs to the controller.
func (b *Board) Click(lat, lng float64) protocol.MapClick {
	return protocol.MapClick{Lat: lat, Lng: lng}
}

// DrawMode returns the last mode the controller advised.
func (b *Board) DrawMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawMode
}

// Cells returns a copy of the painted cells.
func (b *Board) Cells() domain.BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(domain.BoardState, len(b.cells))
	for k, v := range b.cells {
		out[k] = v
	}
	return out
}

// Applied counts the messages the board has acted on.
func (b *Board) Applied() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applied
}
