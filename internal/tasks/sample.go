package tasks

import (
	"time"

	"github.com/nhle/tasknest/internal/model"
)

type sample struct {
	title       string
	description string
	priority    model.Priority
	status      model.Status
	dueIn       time.Duration
	tags        []string
}

const day = 24 * time.Hour

var samples = []sample{
	{"Complete project proposal", "Finalize the quarterly project proposal for client review", model.PriorityHigh, model.StatusInProgress, 0, []string{"work", "urgent"}},
	{"Team meeting preparation", "Prepare agenda and materials for weekly team sync", model.PriorityMedium, model.StatusPending, day, []string{"meeting", "team"}},
	{"Code review", "Review pull requests from team members", model.PriorityMedium, model.StatusCompleted, -day, []string{"development", "review"}},
	{"Update documentation", "Update API documentation with latest changes", model.PriorityLow, model.StatusPending, 2 * day, []string{"documentation", "api"}},
	{"Client presentation", "Prepare slides for quarterly business review", model.PriorityHigh, model.StatusInProgress, 3 * day, []string{"presentation", "client"}},
	{"Database optimization", "Optimize database queries for better performance", model.PriorityMedium, model.StatusPending, 4 * day, []string{"database", "performance"}},
	{"Security audit", "Conduct security audit of the application", model.PriorityHigh, model.StatusPending, 5 * day, []string{"security", "audit"}},
	{"User testing", "Conduct user testing sessions for new features", model.PriorityMedium, model.StatusPending, 6 * day, []string{"testing", "ux"}},
	{"Mobile app update", "Release new version of mobile application", model.PriorityHigh, model.StatusInProgress, 7 * day, []string{"mobile", "release"}},
	{"Training session", "Organize training session for new team members", model.PriorityLow, model.StatusPending, 8 * day, []string{"training", "team"}},
	{"Budget planning", "Plan budget for next quarter", model.PriorityMedium, model.StatusPending, 9 * day, []string{"budget", "planning"}},
	{"Server maintenance", "Perform scheduled server maintenance", model.PriorityHigh, model.StatusPending, 10 * day, []string{"server", "maintenance"}},
	{"Marketing campaign", "Launch new product marketing campaign", model.PriorityHigh, model.StatusPending, 11 * day, []string{"marketing", "campaign"}},
	{"Performance review", "Conduct quarterly performance reviews", model.PriorityMedium, model.StatusPending, 12 * day, []string{"hr", "review"}},
	{"System backup", "Perform weekly system backup and verification", model.PriorityLow, model.StatusCompleted, -2 * day, []string{"backup", "system"}},
}

// SampleTasks builds the demo collection a first-time user starts with.
// Due dates are spread around now.
func SampleTasks(owner model.Identity, now time.Time, newID func() string) []model.Task {
	out := make([]model.Task, 0, len(samples))
	for _, s := range samples {
		out = append(out, model.Task{
			ID:          newID(),
			Title:       s.title,
			Description: s.description,
			Priority:    s.priority,
			Status:      s.status,
			DueDate:     now.Add(s.dueIn),
			CreatedAt:   now,
			UpdatedAt:   now,
			OwnerID:     owner.ID,
			SharedWith:  []string{},
			Tags:        append([]string{}, s.tags...),
		})
	}
	return out
}
