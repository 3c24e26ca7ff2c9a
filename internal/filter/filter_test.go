package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/nhle/tasknest/internal/model"
)

// Wednesday 15 October 2025, mid-morning.
var now = time.Date(2025, time.October, 15, 10, 30, 0, 0, time.UTC)

func task(id string, status model.Status, priority model.Priority, due time.Time, tags ...string) model.Task {
	return model.Task{
		ID:       id,
		Title:    "Task " + id,
		Status:   status,
		Priority: priority,
		DueDate:  due,
		Tags:     tags,
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestApplyWithoutCriteriaIsIdentity(t *testing.T) {
	t.Parallel()
	in := []model.Task{
		task("3", model.StatusCompleted, model.PriorityLow, now.AddDate(0, 0, -3)),
		task("1", model.StatusPending, model.PriorityHigh, now),
		task("2", model.StatusInProgress, model.PriorityMedium, now.AddDate(0, 1, 0)),
	}

	for _, c := range []Criteria{{}, {Due: DueAll}, {Statuses: []model.Status{}, Search: ""}} {
		if c.Active() {
			t.Errorf("Expected %+v to be inactive", c)
		}
		got := Apply(in, c, now, Options{})
		if !reflect.DeepEqual(got, in) {
			t.Errorf("Expected identity for %+v, got %v", c, ids(got))
		}
	}
}

func TestApplyStatusAndPriority(t *testing.T) {
	t.Parallel()
	in := []model.Task{
		task("a", model.StatusPending, model.PriorityHigh, now),
		task("b", model.StatusCompleted, model.PriorityHigh, now),
		task("c", model.StatusPending, model.PriorityLow, now),
		task("d", model.StatusInProgress, model.PriorityMedium, now),
	}

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"status only", Criteria{Statuses: []model.Status{model.StatusPending}}, []string{"a", "c"}},
		{"priority only", Criteria{Priorities: []model.Priority{model.PriorityHigh}}, []string{"a", "b"}},
		{"both", Criteria{
			Statuses:   []model.Status{model.StatusPending, model.StatusInProgress},
			Priorities: []model.Priority{model.PriorityHigh, model.PriorityMedium},
		}, []string{"a", "d"}},
		{"no match", Criteria{Statuses: []model.Status{model.StatusCompleted}, Priorities: []model.Priority{model.PriorityLow}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(in, tt.c, now, Options{}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDueBuckets(t *testing.T) {
	t.Parallel()
	day := 24 * time.Hour
	startOfToday := time.Date(2025, time.October, 15, 0, 0, 0, 0, time.UTC)

	in := []model.Task{
		task("today-early", model.StatusPending, model.PriorityLow, startOfToday),
		task("today-late", model.StatusPending, model.PriorityLow, startOfToday.Add(23*time.Hour)),
		task("yesterday", model.StatusPending, model.PriorityLow, startOfToday.Add(-time.Minute)),
		task("sunday", model.StatusPending, model.PriorityLow, startOfToday.Add(-3*day)),
		task("saturday", model.StatusPending, model.PriorityLow, startOfToday.Add(3*day)),
		task("next-sunday", model.StatusPending, model.PriorityLow, startOfToday.Add(4*day)),
		task("next-saturday", model.StatusPending, model.PriorityLow, startOfToday.Add(10*day)),
		task("far", model.StatusPending, model.PriorityLow, startOfToday.Add(11*day)),
	}

	tests := []struct {
		bucket DueBucket
		want   []string
	}{
		{DueToday, []string{"today-early", "today-late"}},
		{DueOverdue, []string{"yesterday", "sunday"}},
		{DueThisWeek, []string{"today-early", "today-late", "yesterday", "sunday", "saturday"}},
		{DueNextWeek, []string{"next-sunday", "next-saturday"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			got := ids(Apply(in, Criteria{Due: tt.bucket}, now, Options{WeekStart: time.Sunday}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWeekStartMonday(t *testing.T) {
	t.Parallel()
	sunday := time.Date(2025, time.October, 12, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2025, time.October, 13, 9, 0, 0, 0, time.UTC)
	in := []model.Task{
		task("sunday", model.StatusPending, model.PriorityLow, sunday),
		task("monday", model.StatusPending, model.PriorityLow, monday),
	}

	got := ids(Apply(in, Criteria{Due: DueThisWeek}, now, Options{WeekStart: time.Monday}))
	if !reflect.DeepEqual(got, []string{"monday"}) {
		t.Errorf("Expected only monday in a Monday-start week, got %v", got)
	}

	got = ids(Apply(in, Criteria{Due: DueThisWeek}, now, Options{WeekStart: time.Sunday}))
	if !reflect.DeepEqual(got, []string{"sunday", "monday"}) {
		t.Errorf("Expected both days in a Sunday-start week, got %v", got)
	}
}

func TestCompletedTaskIsNeverOverdue(t *testing.T) {
	t.Parallel()
	yesterday := now.AddDate(0, 0, -1)
	open := task("open", model.StatusPending, model.PriorityLow, yesterday)
	done := task("done", model.StatusCompleted, model.PriorityLow, yesterday)

	got := ids(Apply([]model.Task{open, done}, Criteria{Due: DueOverdue}, now, Options{}))
	if !reflect.DeepEqual(got, []string{"open"}) {
		t.Errorf("Expected only the open task overdue, got %v", got)
	}
	if !IsOverdue(open, now) || IsOverdue(done, now) {
		t.Error("IsOverdue disagrees with the overdue bucket")
	}
	if IsOverdue(task("today", model.StatusPending, model.PriorityLow, now.Add(-time.Hour)), now) {
		t.Error("A task due earlier today is not overdue")
	}
}

func TestSearchIntersectsOtherStages(t *testing.T) {
	t.Parallel()
	in := []model.Task{
		{ID: "1", Title: "Write Report", Status: model.StatusPending},
		{ID: "2", Title: "Review", Description: "the quarterly REPORT draft", Status: model.StatusCompleted},
		{ID: "3", Title: "Deploy", Tags: []string{"reporting"}, Status: model.StatusPending},
		{ID: "4", Title: "Lunch", Status: model.StatusPending},
	}

	got := ids(Apply(in, Criteria{Search: "report"}, now, Options{}))
	if !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("Expected title, description and tag matches, got %v", got)
	}

	// A completed match is still excluded by the status stage.
	got = ids(Apply(in, Criteria{Search: "report", Statuses: []model.Status{model.StatusPending}}, now, Options{}))
	if !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("Expected search to intersect with status, got %v", got)
	}

	got = ids(Apply(in, Criteria{Search: "   "}, now, Options{}))
	if len(got) != len(in) {
		t.Errorf("Expected blank search to match everything, got %v", got)
	}
}

func TestParseDueBucket(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "all", "today", "overdue", "this-week", "next-week"} {
		if _, err := ParseDueBucket(s); err != nil {
			t.Errorf("ParseDueBucket(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseDueBucket("someday"); err == nil {
		t.Error("Expected error for unknown bucket")
	}
}
