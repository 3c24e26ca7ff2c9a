package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/tasks"
	"github.com/nhle/tasknest/internal/theme"
)

const dateLayout = "2006-01-02"

// TaskCreatedMsg is dispatched when the form is submitted in create mode.
type TaskCreatedMsg struct {
	Input tasks.TaskInput
}

// TaskUpdatedMsg is dispatched when the form is submitted in edit mode.
type TaskUpdatedMsg struct {
	TaskID string
	Patch  tasks.TaskPatch
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	status      model.Status
	dueDate     string
	tags        string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, status: model.StatusPending},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new task due today.
func (m *Model) StartCreate(today time.Time) tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{
		priority: model.PriorityMedium,
		status:   model.StatusPending,
		dueDate:  today.Format(dateLayout),
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing task's values.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	*m.fb = formBindings{
		title:       task.Title,
		description: task.Description,
		priority:    task.Priority,
		status:      task.Status,
		tags:        strings.Join(task.Tags, ", "),
	}
	if !task.DueDate.IsZero() {
		m.fb.dueDate = task.DueDate.Local().Format(dateLayout)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.form = nil
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[model.Priority], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorities = append(priorities, huh.NewOption(titleCase(string(p)), p))
	}
	statuses := make([]huh.Option[model.Status], 0, len(model.Statuses))
	for _, s := range model.Statuses {
		statuses = append(statuses, huh.NewOption(titleCase(string(s)), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&m.fb.priority),
			huh.NewSelect[model.Status]().
				Title("Status").
				Options(statuses...).
				Value(&m.fb.status),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.dueDate).
				Validate(validateDate),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma separated, e.g. work, urgent").
				Value(&m.fb.tags),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	due, _ := time.ParseInLocation(dateLayout, strings.TrimSpace(m.fb.dueDate), time.Local)
	tags := tasks.ParseTags(m.fb.tags)

	if m.editMode {
		fb := *m.fb
		if tags == nil {
			tags = []string{}
		}
		patch := tasks.TaskPatch{
			Title:       &fb.title,
			Description: &fb.description,
			Priority:    &fb.priority,
			Status:      &fb.status,
			DueDate:     &due,
			Tags:        &tags,
		}
		id := m.editID
		return func() tea.Msg { return TaskUpdatedMsg{TaskID: id, Patch: patch} }
	}

	in := tasks.TaskInput{
		Title:       m.fb.title,
		Description: m.fb.description,
		Priority:    m.fb.priority,
		Status:      m.fb.status,
		DueDate:     due,
		Tags:        tags,
	}
	return func() tea.Msg { return TaskCreatedMsg{Input: in} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "-", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
