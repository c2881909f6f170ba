package domain

// NotificationLevel mirrors the toast kinds understood by the panel.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

var (
	NotifyDrawMode   = Notification{Level: LevelSuccess, Message: "Draw Mode Activated"}
	NotifyMapMode    = Notification{Level: LevelSuccess, Message: "Map Mode Activated"}
	NotifyEraser     = Notification{Level: LevelSuccess, Message: "Eraser Activated"}
	NotifyPaintbrush = Notification{Level: LevelSuccess, Message: "Paintbrush Activated"}
	NotifyCleared    = Notification{Level: LevelSuccess, Message: "All pixels cleared!"}
)
