package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/theme"
	"github.com/nhle/tasknest/internal/ui/command"
)

// sectionTitles name the FullHelp groups, in order.
var sectionTitles = []string{"Navigate", "Tasks", "Find", "Session"}

// Model is the help overlay: key bindings by section, then the command
// palette vocabulary.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)

	var columns []string
	for i, group := range m.keys.FullHelp() {
		title := ""
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		columns = append(columns, renderGroup(heading.Render(title), group))
	}
	bindings := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	var cmds []string
	cmds = append(cmds, heading.Render("Commands (press :)"))
	for _, e := range command.Catalog {
		line := fmt.Sprintf("%-16s %s", e.Usage, theme.HelpStyle.Render(e.Summary))
		if len(e.Aliases) > 0 {
			line += theme.DimmedStyle.Render(" (" + strings.Join(e.Aliases, ", ") + ")")
		}
		cmds = append(cmds, line)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("TaskNest Shortcuts")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, bindings, "", lipgloss.JoinVertical(lipgloss.Left, cmds...))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// renderGroup lays out one column of bindings under its heading.
func renderGroup(heading string, group []key.Binding) string {
	rows := []string{heading}
	for _, b := range group {
		h := b.Help()
		rows = append(rows, fmt.Sprintf("%-6s %s", h.Key, theme.HelpStyle.Render(h.Desc)))
	}
	return lipgloss.NewStyle().MarginRight(4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// ShortHelp renders the compact one-line binding summary.
func (m Model) ShortHelp() string {
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
