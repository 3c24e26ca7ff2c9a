package share

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// SubmitMsg is dispatched when the user confirms a collaborator address.
type SubmitMsg struct {
	TaskID string
	Email  string
}

// CancelMsg is dispatched when the user backs out.
type CancelMsg struct{}

type bindings struct {
	email string
}

// Model is the share dialog: one email field plus the current
// collaborator list.
type Model struct {
	form   *huh.Form
	fb     *bindings
	task   model.Task
	width  int
	height int
}

// New creates a share dialog model.
func New(width, height int) Model {
	return Model{fb: &bindings{}, width: width, height: height}
}

// Start opens the dialog for task.
func (m *Model) Start(task model.Task) tea.Cmd {
	m.task = task
	m.fb.email = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collaborator email").
				Placeholder("name@example.com").
				Value(&m.fb.email).
				Validate(validateEmail),
		),
	).WithWidth(min(max(m.width-4, 40), 80))
	return m.form.Init()
}

// Update handles messages for the share dialog.
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
		taskID, email := m.task.ID, strings.TrimSpace(m.fb.email)
		return m, func() tea.Msg { return SubmitMsg{TaskID: taskID, Email: email} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the share dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	sections := []string{
		titleStyle.Render(fmt.Sprintf("Share %q", m.task.Title)),
		"",
	}
	if len(m.task.SharedWith) == 0 {
		sections = append(sections, metaStyle.Render("Not shared with anyone yet."))
	} else {
		sections = append(sections, metaStyle.Render("Already shared with:"))
		for _, email := range m.task.SharedWith {
			sections = append(sections, theme.SharedStyle.Render("  • "+email))
		}
	}
	sections = append(sections, "", m.form.View())

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the dialog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("not a valid email address")
	}
	return nil
}
