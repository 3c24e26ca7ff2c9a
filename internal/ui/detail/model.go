package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Action names carried by ActionMsg.
const (
	ActionEdit   = "edit"
	ActionShare  = "share"
	ActionStatus = "status"
	ActionDelete = "delete"
)

// ActionMsg signals the parent to act on the displayed task.
type ActionMsg struct {
	Action string
	TaskID string
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	owner    string
	now      time.Time
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if m.task != nil {
			id := m.task.ID
			action := ""
			switch {
			case key.Matches(msg, m.keys.Edit):
				action = ActionEdit
			case key.Matches(msg, m.keys.Share):
				action = ActionShare
			case key.Matches(msg, m.keys.CycleStatus):
				action = ActionStatus
			case key.Matches(msg, m.keys.Delete):
				action = ActionDelete
			}
			if action != "" {
				return m, func() tea.Msg { return ActionMsg{Action: action, TaskID: id} }
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	statusBadge := theme.StatusStyle(task.Status).Render(string(task.Status))
	priBadge := theme.PriorityStyle(task.Priority).Render(string(task.Priority) + " priority")
	badges := []string{statusBadge, "  ", priBadge}
	if filter.IsOverdue(*task, m.now) {
		badges = append(badges, "  ", theme.OverdueStyle.Render("OVERDUE"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-9s", label+":")), valStyle.Render(value))
	}

	if !task.DueDate.IsZero() {
		sections = append(sections, row("Due", task.DueDate.Local().Format("Mon 2006-01-02")))
	}
	if m.owner != "" {
		sections = append(sections, row("Owner", m.owner))
	}
	sections = append(sections, row("Created", task.CreatedAt.Local().Format("2006-01-02 15:04")))
	sections = append(sections, row("Updated", task.UpdatedAt.Local().Format("2006-01-02 15:04")))
	if len(task.Tags) > 0 {
		sections = append(sections, fmt.Sprintf("%s %s",
			metaStyle.Render(fmt.Sprintf("%-9s", "Tags:")),
			theme.TagStyle.Render("#"+strings.Join(task.Tags, " #"))))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, headerStyle.Render("Description"))
	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render(
		fmt.Sprintf("Collaborators (%d)", len(task.SharedWith)),
	))
	if len(task.SharedWith) == 0 {
		sections = append(sections, metaStyle.Render("Press s to share this task."))
	}
	for _, email := range task.SharedWith {
		sections = append(sections, theme.SharedStyle.Render("• "+email))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTask updates the task being displayed and re-renders the content.
// owner is the display name shown for the task's owner, if known.
func (m *Model) SetTask(task model.Task, owner string, now time.Time) {
	m.task = &task
	m.owner = owner
	m.now = now
	m.viewport.SetContent(m.renderContent())
}

// Clear drops the displayed task.
func (m *Model) Clear() {
	m.task = nil
	m.viewport.SetContent("")
	m.viewport.GotoTop()
}

// TaskID returns the displayed task's id, or "".
func (m Model) TaskID() string {
	if m.task == nil {
		return ""
	}
	return m.task.ID
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
