package model

import "time"

// NotificationLevel classifies an outcome notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is a user-visible outcome of an operation, shown as a
// transient message in the status bar.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Level tells success and failure apart.
	Level NotificationLevel `json:"level"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// TaskID links the notification to a task, when there is one.
	TaskID string `json:"task_id,omitempty"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
