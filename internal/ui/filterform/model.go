package filterform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// AppliedMsg carries the filter changes the user confirmed.
type AppliedMsg struct {
	Patch board.FilterPatch
}

// CancelMsg is dispatched when the user closes the form unchanged.
type CancelMsg struct{}

type bindings struct {
	statuses   []model.Status
	priorities []model.Priority
	due        filter.DueBucket
}

var dueLabels = map[filter.DueBucket]string{
	filter.DueAll:      "Any time",
	filter.DueToday:    "Due today",
	filter.DueOverdue:  "Overdue",
	filter.DueThisWeek: "This week",
	filter.DueNextWeek: "Next week",
}

// Model is the filter panel form.
type Model struct {
	form   *huh.Form
	fb     *bindings
	width  int
	height int
}

// New creates a filter form model.
func New(width, height int) Model {
	return Model{fb: &bindings{due: filter.DueAll}, width: width, height: height}
}

// Start opens the form pre-filled with the active criteria.
func (m *Model) Start(c filter.Criteria) tea.Cmd {
	m.fb.statuses = append([]model.Status(nil), c.Statuses...)
	m.fb.priorities = append([]model.Priority(nil), c.Priorities...)
	m.fb.due = c.Due
	if m.fb.due == "" {
		m.fb.due = filter.DueAll
	}

	statusOpts := make([]huh.Option[model.Status], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOpts[i] = huh.NewOption(string(s), s)
	}
	priorityOpts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		priorityOpts[i] = huh.NewOption(string(p), p)
	}
	dueOpts := make([]huh.Option[filter.DueBucket], len(filter.DueBuckets))
	for i, b := range filter.DueBuckets {
		dueOpts[i] = huh.NewOption(dueLabels[b], b)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[model.Status]().
				Title("Status").
				Description("none selected shows every status").
				Options(statusOpts...).
				Value(&m.fb.statuses),
			huh.NewMultiSelect[model.Priority]().
				Title("Priority").
				Description("none selected shows every priority").
				Options(priorityOpts...).
				Value(&m.fb.priorities),
			huh.NewSelect[filter.DueBucket]().
				Title("Due date").
				Options(dueOpts...).
				Value(&m.fb.due),
		),
	).WithWidth(min(max(m.width-4, 40), 80))
	return m.form.Init()
}

// Update handles messages for the filter form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		statuses := append([]model.Status(nil), m.fb.statuses...)
		priorities := append([]model.Priority(nil), m.fb.priorities...)
		due := m.fb.due
		patch := board.FilterPatch{Statuses: &statuses, Priorities: &priorities, Due: &due}
		return m, func() tea.Msg { return AppliedMsg{Patch: patch} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the filter form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Filters")
	hint := theme.HelpStyle.Render(strings.Join([]string{
		"space toggles", "enter confirms", "esc cancels",
	}, " · "))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View(), hint))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
