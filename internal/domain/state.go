package domain

import "strings"

// InteractionState is the observable part of a controller's state.
// The last non-eraser color is deliberately not part of it.
type InteractionState struct {
	CurrentColor Color
	IsDrawMode   bool
}

// NewInteractionState returns the start-of-session state.
func NewInteractionState(defaultColor Color) InteractionState {
	if defaultColor == "" || defaultColor.IsEraser() {
		defaultColor = DefaultColor
	}
	return InteractionState{CurrentColor: defaultColor, IsDrawMode: DefaultDrawMode}
}

// DefaultDrawMode is the mode a session starts in, and the mode the surface is
// forced into when it reports ready.
const DefaultDrawMode = true

// EraserActive reports whether the eraser is the current color.
func (s InteractionState) EraserActive() bool { return s.CurrentColor.IsEraser() }

// PickerValue is the value the color input displays.
func (s InteractionState) PickerValue() Color {
	if s.EraserActive() {
		return PickerPlaceholder
	}
	return s.CurrentColor
}

// ModeButtonLabel is the caption of the toolbar toggle; it names the mode a click switches to.
func (s InteractionState) ModeButtonLabel() string {
	if s.IsDrawMode {
		return "Map Mode (D)"
	}
	return "Draw Mode (D)"
}

// KeyEvent is a keydown reported by the panel.
// TargetTag is the tag name of the focused element, e.g. "INPUT" or "BODY".
type KeyEvent struct {
	Key       string
	TargetTag string
}

// FromTextInput reports whether the key was typed into a text input.
func (e KeyEvent) FromTextInput() bool {
	return strings.EqualFold(e.TargetTag, "input")
}
