// Package dto holds the JSON frames exchanged with the panel page.
package dto

import (
	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Panel command types.
const (
	CommandKeyDown      = "keydown"
	CommandToggleMode   = "toggleMode"
	CommandToggleEraser = "toggleEraser"
	CommandSetColor     = "setColor"
	CommandClearAll     = "clearAll"
)

// PanelCommand is a frame sent by the panel: a keydown, a toolbar button or
// color input change. Commands are accepted in both modes; a panel that only
// shows the color input, eraser and clear buttons in draw mode hides them using
// the isDrawMode field of the state frame.
type PanelCommand struct {
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	TargetTag string `json:"targetTag,omitempty"`
	Value     string `json:"value,omitempty"`
}

// KeyEvent converts a keydown command.
func (c PanelCommand) KeyEvent() domain.KeyEvent {
	return domain.KeyEvent{Key: c.Key, TargetTag: c.TargetTag}
}

// StateDTO is what the panel renders. The color restored by the eraser toggle
// is not part of it.
type StateDTO struct {
	Type            string       `json:"type"`
	CurrentColor    domain.Color `json:"currentColor"`
	PickerColor     domain.Color `json:"pickerColor"`
	IsDrawMode      bool         `json:"isDrawMode"`
	EraserActive    bool         `json:"eraserActive"`
	ModeButtonLabel string       `json:"modeButtonLabel"`
}

func NewStateDTO(s domain.InteractionState) StateDTO {
	return StateDTO{
		Type:            "state",
		CurrentColor:    s.CurrentColor,
		PickerColor:     s.PickerValue(),
		IsDrawMode:      s.IsDrawMode,
		EraserActive:    s.EraserActive(),
		ModeButtonLabel: s.ModeButtonLabel(),
	}
}

// NotificationDTO asks the panel to show a toast.
type NotificationDTO struct {
	Type string `json:"type"`
	domain.Notification
}

func NewNotificationDTO(n domain.Notification) NotificationDTO {
	return NotificationDTO{Type: "notification", Notification: n}
}

// FocusDTO asks the panel to take keyboard focus back from the map frame.
type FocusDTO struct {
	Type string `json:"type"`
}

func NewFocusDTO() FocusDTO { return FocusDTO{Type: "focus"} }

// ErrorDTO reports a rejected command to the panel.
type ErrorDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorDTO(message string) ErrorDTO { return ErrorDTO{Type: "error", Message: message} }

var validate = validator.New()

// ValidateColor checks a color input value, e.g. "#ff8800".
func ValidateColor(value string) error {
	return validate.Var(value, "required,hexcolor")
}
