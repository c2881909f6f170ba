// Package protocol defines the messages exchanged between a controller and the
// map surface it drives.
//
// Messages travelling to the surface are tagged with an "action" field,
// messages coming back from the surface with a "type" field.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/caps24escola/pixel-world/internal/domain"
)

// Kind names a message variant on the wire.
type Kind string

const (
	KindSetDrawMode Kind = "setDrawMode"
	KindAddPixel    Kind = "addPixel"
	KindClearPixels Kind = "clearPixels"
	KindMapClick    Kind = "mapClick"
	KindReady       Kind = "ready"
)

var (
	ErrMalformedMessage = errors.New("protocol: malformed message")
	ErrUnknownMessage   = errors.New("protocol: unknown message kind")
)

// Message is one of SetDrawMode, AddPixel, ClearPixels, MapClick or Ready.
type Message interface {
	Kind() Kind
}

// SetDrawMode tells the surface which input-handling mode to use. Advisory only:
// clicks are still gated by the controller.
type SetDrawMode struct {
	IsDrawMode bool
}

// AddPixel paints the cell nearest (Lat, Lng), or clears it when Color is domain.Eraser.
type AddPixel struct {
	Lat   float64
	Lng   float64
	Color domain.Color
}

// ClearPixels removes every painted cell.
type ClearPixels struct{}

// MapClick reports a pointer interaction on the surface.
type MapClick struct {
	Lat float64
	Lng float64
}

// Ready is sent once by the surface after its initial load.
type Ready struct{}

func (SetDrawMode) Kind() Kind { return KindSetDrawMode }
func (AddPixel) Kind() Kind    { return KindAddPixel }
func (ClearPixels) Kind() Kind { return KindClearPixels }
func (MapClick) Kind() Kind    { return KindMapClick }
func (Ready) Kind() Kind       { return KindReady }

func (m SetDrawMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action     Kind `json:"action"`
		IsDrawMode bool `json:"isDrawMode"`
	}{KindSetDrawMode, m.IsDrawMode})
}

func (m AddPixel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action Kind         `json:"action"`
		Lat    float64      `json:"lat"`
		Lng    float64      `json:"lng"`
		Color  domain.Color `json:"color"`
	}{KindAddPixel, m.Lat, m.Lng, m.Color})
}

func (ClearPixels) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Action Kind `json:"action"`
	}{KindClearPixels})
}

func (m MapClick) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Kind    `json:"type"`
		Lat  float64 `json:"lat"`
		Lng  float64 `json:"lng"`
	}{KindMapClick, m.Lat, m.Lng})
}

func (Ready) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type Kind `json:"type"`
	}{KindReady})
}

// Encode returns the wire form of msg.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrMalformedMessage
	}
	return json.Marshal(msg)
}
