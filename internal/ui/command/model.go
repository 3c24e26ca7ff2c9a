package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/theme"
)

// CommandMsg is emitted when the palette closes. Name is the canonical
// command name, or empty when the palette was dismissed.
type CommandMsg struct {
	Name string
	Arg  string
}

// maxHints caps the number of catalog rows shown under the input.
const maxHints = 6

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	errMsg string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command, tab completes"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.Width = width - 6

	names := make([]string, len(Catalog))
	for i, e := range Catalog {
		names[i] = e.Name
	}
	ti.SetSuggestions(names)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.input.Reset()
			m.errMsg = ""
			return m, func() tea.Msg { return CommandMsg{} }
		case "enter":
			raw := m.input.Value()
			if strings.TrimSpace(raw) == "" {
				return m, nil
			}
			cmd, ok := Parse(raw)
			if !ok {
				m.errMsg = fmt.Sprintf("unknown command %q", cmd.Name)
				return m, nil
			}
			m.input.Reset()
			m.errMsg = ""
			return m, func() tea.Msg { return cmd }
		}
		m.errMsg = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette with the commands matching the
// typed name.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	rows := []string{title, m.input.View(), ""}
	if m.errMsg != "" {
		rows = append(rows, theme.OverdueStyle.Render(m.errMsg))
	}

	name, _, _ := strings.Cut(strings.TrimSpace(m.input.Value()), " ")
	matches := Matching(name)
	for i, e := range matches {
		if i == maxHints {
			rows = append(rows, theme.DimmedStyle.Render(fmt.Sprintf("  … %d more", len(matches)-maxHints)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %-16s %s", e.Usage, theme.HelpStyle.Render(e.Summary)))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus clears any previous input and gives keyboard focus to the
// palette.
func (m *Model) Focus() tea.Cmd {
	m.input.Reset()
	m.errMsg = ""
	return m.input.Focus()
}
