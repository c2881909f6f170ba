package domain

import "strings"

// Color is a paint color as produced by the panel's color input, e.g. "#FF0000".
// The Eraser value is not a color; it marks erase intent.
type Color string

const (
	// Eraser is the sentinel carried in the color field of an addPixel message
	// when the cell should be cleared instead of painted.
	Eraser Color = "transparent"

	// DefaultColor is the color the controller starts with.
	DefaultColor Color = "#FFFF00"

	// PickerPlaceholder is what the color input shows while the eraser is active.
	PickerPlaceholder Color = "#ffffff"
)

// IsEraser reports whether c is the eraser sentinel.
func (c Color) IsEraser() bool {
	return strings.EqualFold(string(c), string(Eraser))
}

func (c Color) String() string { return string(c) }
