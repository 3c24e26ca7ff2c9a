package model

import (
	"fmt"
	"time"
)

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in ascending urgency.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts user input into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

// Status is the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the following status in the workflow. Completed is final
// and returns itself.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q (want pending, in-progress or completed)", s)
	}
	return st, nil
}

// Task is a unit of trackable work owned by one identity.
type Task struct {
	// ID is unique within the persisted collection.
	ID string `json:"id"`

	// Title is the short, non-empty summary.
	Title string `json:"title"`

	// Description is the optional body text.
	Description string `json:"description"`

	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	// DueDate is when the task should be finished.
	DueDate time.Time `json:"due_date"`

	// CreatedAt and UpdatedAt are stamped by the task store.
	// UpdatedAt is never before CreatedAt.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// OwnerID is the identity that created the task. Immutable.
	OwnerID string `json:"owner_id"`

	// SharedWith holds collaborator email addresses. Only grows.
	SharedWith []string `json:"shared_with"`

	// Tags are free-text labels in display order.
	Tags []string `json:"tags"`
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// VisibleTo reports whether the identity owns the task or is one of its
// collaborators.
func (t Task) VisibleTo(id Identity) bool {
	if t.OwnerID == id.ID {
		return true
	}
	for _, email := range t.SharedWith {
		if email == id.Email {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot alias the store's slices.
// Empty lists stay non-nil so they encode as [] rather than null.
func (t Task) Clone() Task {
	c := t
	c.SharedWith = cloneStrings(t.SharedWith)
	c.Tags = cloneStrings(t.Tags)
	return c
}

func cloneStrings(s []string) []string {
	return append(make([]string, 0, len(s)), s...)
}
