package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
)

// Notifier receives user-visible operation outcomes.
type Notifier interface {
	Notify(n model.Notification)
}

// Func adapts a plain function to Notifier.
type Func func(n model.Notification)

// Notify calls f(n).
func (f Func) Notify(n model.Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(model.Notification) {})

// New builds a notification stamped with a fresh ID and the current time.
func New(level model.NotificationLevel, taskID, message string) model.Notification {
	return model.Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		TaskID:    taskID,
		CreatedAt: time.Now(),
	}
}

// Success sends a success notification to n.
func Success(n Notifier, taskID, message string) {
	n.Notify(New(model.LevelSuccess, taskID, message))
}

// Failure sends an error notification to n.
func Failure(n Notifier, taskID, message string) {
	n.Notify(New(model.LevelError, taskID, message))
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

// Notify forwards n to every notifier.
func (m Multi) Notify(n model.Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

// Log writes notifications to the structured log.
type Log struct{}

// Notify logs n at info or error level.
func (Log) Notify(n model.Notification) {
	if n.Level == model.LevelError {
		logger.Error("notification", "message", n.Message, "task_id", n.TaskID)
		return
	}
	logger.Info("notification", "message", n.Message, "task_id", n.TaskID)
}
