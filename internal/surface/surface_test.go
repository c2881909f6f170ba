package surface_test

import (
	"testing"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/protocol"
	"github.com/caps24escola/pixel-world/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	payloads []string
	full     bool
}

func (r *recorder) Deliver(payload []byte) bool {
	if r.full {
		return false
	}
	r.payloads = append(r.payloads, string(payload))
	return true
}

func TestHandle_DropsWhenNotAttached(t *testing.T) {
	h := surface.NewHandle(nil)
	assert.False(t, h.Live())
	assert.NotPanics(t, func() { h.Send(protocol.ClearPixels{}) })
}

func TestHandle_SendDeliversEncodedPayload(t *testing.T) {
	h := surface.NewHandle(nil)
	r := &recorder{}
	h.Attach(r)
	require.True(t, h.Live())

	h.Send(protocol.SetDrawMode{IsDrawMode: true})
	h.Send(protocol.AddPixel{Lat: 10, Lng: 20, Color: domain.Eraser})

	require.Len(t, r.payloads, 2)
	assert.JSONEq(t, `{"action":"setDrawMode","isDrawMode":true}`, r.payloads[0])
	assert.JSONEq(t, `{"action":"addPixel","lat":10,"lng":20,"color":"transparent"}`, r.payloads[1])
}

func TestHandle_DetachOnlyCurrentTarget(t *testing.T) {
	h := surface.NewHandle(nil)
	first, second := &recorder{}, &recorder{}
	h.Attach(first)
	h.Attach(second)

	assert.False(t, h.Detach(first), "a replaced surface must not detach its successor")
	assert.True(t, h.Live())

	h.Send(protocol.ClearPixels{})
	assert.Empty(t, first.payloads)
	assert.Len(t, second.payloads, 1)

	assert.True(t, h.Detach(second))
	h.Send(protocol.ClearPixels{})
	assert.Len(t, second.payloads, 1)
}

func TestHandle_FullTargetDropsSilently(t *testing.T) {
	h := surface.NewHandle(nil)
	h.Attach(&recorder{full: true})
	assert.NotPanics(t, func() { h.Send(protocol.ClearPixels{}) })
}

func TestBoard_AppliesProtocol(t *testing.T) {
	b := surface.NewBoard()
	h := surface.NewHandle(nil)
	h.Attach(b)

	h.Send(protocol.SetDrawMode{IsDrawMode: true})
	assert.True(t, b.DrawMode())

	h.Send(protocol.AddPixel{Lat: 10, Lng: 20, Color: "#FFFF00"})
	h.Send(protocol.AddPixel{Lat: 11, Lng: 21, Color: "#00FF00"})
	cells := b.Cells()
	assert.Len(t, cells, 2)
	assert.Equal(t, "#FFFF00", cells[domain.CellKey(10, 20)])

	h.Send(protocol.AddPixel{Lat: 10, Lng: 20, Color: domain.Eraser})
	assert.NotContains(t, b.Cells(), domain.CellKey(10, 20))

	h.Send(protocol.ClearPixels{})
	assert.Empty(t, b.Cells())
	h.Send(protocol.ClearPixels{})
	assert.Empty(t, b.Cells())
	assert.Equal(t, 6, b.Applied())
}

func TestBoard_IgnoresUnknownShapes(t *testing.T) {
	b := surface.NewBoard()
	assert.True(t, b.Deliver([]byte(`{"action":"explode"}`)))
	assert.True(t, b.Deliver([]byte(`{"type":"mapClick","lat":1,"lng":2}`)))
	assert.Error(t, b.Receive([]byte(`{"action":"addPixel","lat":"1","lng":2,"color":"#000"}`)))
	assert.Equal(t, 0, b.Applied())
}

func TestBoard_ClickIgnoresOwnMode(t *testing.T) {
	b := surface.NewBoard()
	b.Apply(protocol.SetDrawMode{IsDrawMode: false})
	assert.Equal(t, protocol.MapClick{Lat: 3, Lng: 4}, b.Click(3, 4))
}
