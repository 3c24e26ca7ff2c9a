package tasklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the main task list view component. It renders the active
// page of a board.
type Model struct {
	list        list.Model
	board       *board.Board
	keys        *keys.KeyMap
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model over b.
func New(b *board.Board, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-3)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title, description or tags..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		board:       b,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh rebuilds the rows from the board's active page, keeping the
// cursor where it was when possible.
func (m *Model) Refresh() tea.Cmd {
	if m.board == nil {
		return nil
	}
	page := m.board.PageTasks()
	now := m.board.Now()

	items := make([]list.Item, len(page))
	for i, t := range page {
		items[i] = newItem(t, now)
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := strings.TrimSpace(m.searchInput.Value())
		m.board.SetFilters(board.FilterPatch{Search: &query})
		m.list.Select(0)
		return m, m.Refresh()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		empty := ""
		m.board.SetFilters(board.FilterPatch{Search: &empty})
		return m, m.Refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.board.Criteria().Search)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.NextPage):
		m.board.NextPage()
		m.list.Select(0)
		return m, m.Refresh()

	case key.Matches(msg, m.keys.PrevPage):
		m.board.PrevPage()
		m.list.Select(0)
		return m, m.Refresh()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// View renders the task list view.
func (m Model) View() string {
	var body string
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	} else {
		body = m.list.View()
	}

	footer := theme.HelpStyle.Render(m.pageSummary())

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// pageSummary describes the page position and the number of matches.
func (m Model) pageSummary() string {
	if m.board == nil {
		return ""
	}
	total := len(m.board.Filtered())
	pages := max(m.board.TotalPages(), 1)
	s := fmt.Sprintf("  page %d/%d · %d tasks", m.board.Page(), pages, total)
	if m.board.IsLoading() {
		s += " · saving…"
	}
	return s
}

// renderEmptyState shows guidance text when no tasks are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-3).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.board != nil && m.board.Criteria().Active() {
		return style.Render("No matching tasks.\nPress F to clear your filters.")
	}

	return style.Render("No tasks yet.\n\nPress n to create one.")
}

// FilterSummary describes the active filters for the status bar, or
// returns "" when none are active.
func (m Model) FilterSummary() string {
	if m.board == nil {
		return ""
	}
	return Summarize(m.board.Criteria())
}

// Summarize renders criteria as a compact one-line description.
func Summarize(c filter.Criteria) string {
	if !c.Active() {
		return ""
	}
	var parts []string
	if len(c.Statuses) > 0 {
		names := make([]string, len(c.Statuses))
		for i, s := range c.Statuses {
			names[i] = string(s)
		}
		parts = append(parts, "status:"+strings.Join(names, ","))
	}
	if len(c.Priorities) > 0 {
		names := make([]string, len(c.Priorities))
		for i, p := range c.Priorities {
			names[i] = string(p)
		}
		parts = append(parts, "priority:"+strings.Join(names, ","))
	}
	if c.Due != "" && c.Due != filter.DueAll {
		parts = append(parts, "due:"+string(c.Due))
	}
	if q := strings.TrimSpace(c.Search); q != "" {
		parts = append(parts, fmt.Sprintf("search:%q", q))
	}
	return "filters " + strings.Join(parts, " ")
}

// SetBoard swaps the board after a new sign-in.
func (m *Model) SetBoard(b *board.Board) {
	m.board = b
	m.searchMode = false
	m.searchInput.Reset()
	m.list.Select(0)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
