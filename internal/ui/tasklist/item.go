package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task    model.Task
	Overdue bool
}

func newItem(t model.Task, now time.Time) TaskItem {
	return TaskItem{Task: t, Overdue: filter.IsOverdue(t, now)}
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		string(i.Task.Status),
		string(i.Task.Priority),
		relativeTime(i.Task.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task
	isSelected := index == m.Index()

	prefix := "○"
	if task.IsCompleted() {
		prefix = "✓"
	}

	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))
	priBadge := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))

	tagBadge := ""
	if len(task.Tags) > 0 {
		// Show max 2 tags to avoid overflow
		display := task.Tags
		if len(display) > 2 {
			display = append(append([]string(nil), display[:2]...), "…")
		}
		tagBadge = theme.TagStyle.Render(" #" + strings.Join(display, " #"))
	}

	sharedBadge := ""
	if n := len(task.SharedWith); n > 0 {
		sharedBadge = theme.SharedStyle.Render(fmt.Sprintf(" ⇄%d", n))
	}

	dueDateStr := ""
	if !task.DueDate.IsZero() {
		dueDateStr = theme.DueDateStyle.Render(" " + task.DueDate.Local().Format("Jan 02"))
	}

	overdueStr := ""
	if ti.Overdue {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s%s%s",
		prefix, statusBadge, priBadge, task.Title,
		tagBadge, sharedBadge, dueDateStr, overdueStr,
	)

	if task.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HIGH"
	case model.PriorityMedium:
		return "MED "
	case model.PriorityLow:
		return "LOW "
	default:
		return "?   "
	}
}
