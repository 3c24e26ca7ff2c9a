// Package filter derives the visible, ordered subset of a task collection
// from the active filter criteria, and pages through it.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nhle/tasknest/internal/model"
)

// DueBucket selects tasks by where their due date falls relative to now.
type DueBucket string

const (
	DueAll      DueBucket = "all"
	DueToday    DueBucket = "today"
	DueOverdue  DueBucket = "overdue"
	DueThisWeek DueBucket = "this-week"
	DueNextWeek DueBucket = "next-week"
)

// DueBuckets lists every bucket in menu order.
var DueBuckets = []DueBucket{DueAll, DueToday, DueOverdue, DueThisWeek, DueNextWeek}

// ParseDueBucket converts user input into a DueBucket. An empty string
// means DueAll.
func ParseDueBucket(s string) (DueBucket, error) {
	if s == "" {
		return DueAll, nil
	}
	b := DueBucket(s)
	if !slices.Contains(DueBuckets, b) {
		return "", fmt.Errorf("unknown due filter %q (want all, today, overdue, this-week or next-week)", s)
	}
	return b, nil
}

// Criteria is the active combination of filters. Empty status and
// priority sets accept everything.
type Criteria struct {
	Statuses   []model.Status
	Priorities []model.Priority
	Due        DueBucket
	Search     string
}

// Active reports whether any criterion narrows the collection.
func (c Criteria) Active() bool {
	return len(c.Statuses) > 0 ||
		len(c.Priorities) > 0 ||
		(c.Due != "" && c.Due != DueAll) ||
		strings.TrimSpace(c.Search) != ""
}

// Options tune calendar arithmetic.
type Options struct {
	// WeekStart is the first day of a calendar week. Sunday by default.
	WeekStart time.Weekday
}

// Apply returns the tasks matching c, in their original relative order.
// Calendar comparisons use now's location.
func Apply(tasks []model.Task, c Criteria, now time.Time, opts Options) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Match(t, c, now, opts) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether a single task passes every stage. The search
// stage intersects with the earlier stages rather than overriding them.
func Match(t model.Task, c Criteria, now time.Time, opts Options) bool {
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, t.Status) {
		return false
	}
	if len(c.Priorities) > 0 && !slices.Contains(c.Priorities, t.Priority) {
		return false
	}
	if c.Due != "" && c.Due != DueAll && !InBucket(t, c.Due, now, opts.WeekStart) {
		return false
	}
	if q := strings.TrimSpace(c.Search); q != "" && !matchesSearch(t, q) {
		return false
	}
	return true
}

// InBucket reports whether the task's due date falls in bucket.
// Completed tasks are never overdue.
func InBucket(t model.Task, bucket DueBucket, now time.Time, weekStart time.Weekday) bool {
	due := t.DueDate.In(now.Location())
	today := startOfDay(now)

	switch bucket {
	case DueToday:
		return sameDay(due, now)
	case DueOverdue:
		return !t.IsCompleted() && due.Before(today)
	case DueThisWeek:
		start := startOfWeek(now, weekStart)
		return within(due, start, start.AddDate(0, 0, 7))
	case DueNextWeek:
		start := startOfWeek(now, weekStart).AddDate(0, 0, 7)
		return within(due, start, start.AddDate(0, 0, 7))
	default:
		return true
	}
}

// IsOverdue reports whether an open task's due date is before today.
func IsOverdue(t model.Task, now time.Time) bool {
	return InBucket(t, DueOverdue, now, time.Sunday)
}

func matchesSearch(t model.Task, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// within reports start <= t < end.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
