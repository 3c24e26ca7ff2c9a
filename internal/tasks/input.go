package tasks

import (
	"strings"
	"time"

	"github.com/nhle/tasknest/internal/model"
)

// TaskInput holds the caller-supplied fields of a new task. A zero DueDate
// defaults to the creation time.
type TaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	Status      model.Status
	DueDate     time.Time
	Tags        []string
}

// TaskPatch holds the fields to change on an existing task. Nil fields
// are left as they are. Identity, ownership and timestamps cannot be
// patched.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Status      *model.Status
	DueDate     *time.Time
	Tags        *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.DueDate == nil && p.Tags == nil
}

// normalizeTags trims tags and drops empty and repeated ones, keeping the
// first occurrence's position.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// ParseTags splits a comma-separated tag list as typed into a form or flag.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return normalizeTags(strings.Split(s, ","))
}
