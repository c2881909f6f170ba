package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/caps24escola/pixel-world/internal/domain"
)

// ParseMapClick extracts a MapClick from an inbound payload. Anything that is
// not a mapClick with numeric lat and lng yields ok == false; callers ignore it.
func ParseMapClick(raw []byte) (MapClick, bool) {
	var in struct {
		Type Kind     `json:"type"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return MapClick{}, false
	}
	if in.Type != KindMapClick || in.Lat == nil || in.Lng == nil {
		return MapClick{}, false
	}
	return MapClick{Lat: *in.Lat, Lng: *in.Lng}, true
}

// IsReady reports whether raw is the surface's ready signal.
func IsReady(raw []byte) bool {
	var in struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return false
	}
	return in.Type == KindReady
}

// Decode parses a controller-to-surface message. The surface ignores anything
// Decode rejects.
func Decode(raw []byte) (Message, error) {
	var env struct {
		Action Kind `json:"action"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Action {
	case KindSetDrawMode:
		var m struct {
			IsDrawMode *bool `json:"isDrawMode"`
		}
		if err := json.Unmarshal(raw, &m); err != nil || m.IsDrawMode == nil {
			return nil, fmt.Errorf("%w: setDrawMode needs a boolean isDrawMode", ErrMalformedMessage)
		}
		return SetDrawMode{IsDrawMode: *m.IsDrawMode}, nil
	case KindAddPixel:
		var m struct {
			Lat   *float64 `json:"lat"`
			Lng   *float64 `json:"lng"`
			Color *string  `json:"color"`
		}
		if err := json.Unmarshal(raw, &m); err != nil || m.Lat == nil || m.Lng == nil || m.Color == nil {
			return nil, fmt.Errorf("%w: addPixel needs numeric lat/lng and a color", ErrMalformedMessage)
		}
		return AddPixel{Lat: *m.Lat, Lng: *m.Lng, Color: domain.Color(*m.Color)}, nil
	case KindClearPixels:
		return ClearPixels{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Action)
	}
}
