package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// DoneMsg signals the settings view should close. Saved is set when the
// configuration was written; Config then holds the new values.
type DoneMsg struct {
	Saved  bool
	Config model.AppConfig
	Err    error
}

// bindings holds the huh-bound values. Kept behind a pointer so copies of
// Model share them.
type bindings struct {
	pageSize   string
	weekStart  string
	seedDemo   bool
	loginDelay string
	identity   string
	logLevel   string
}

// Model is the preferences form.
type Model struct {
	form   *huh.Form
	fb     *bindings
	cfg    model.AppConfig
	path   string
	width  int
	height int
}

// New creates a settings view that writes to the config file at path.
func New(path string, width, height int) Model {
	return Model{fb: &bindings{}, path: path, width: width, height: height}
}

// Start opens the form pre-filled with cfg.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.cfg = cfg
	m.fb.pageSize = strconv.Itoa(cfg.Tasks.PageSize)
	m.fb.weekStart = cfg.Filter.WeekStart
	m.fb.seedDemo = cfg.Tasks.SeedDemo
	m.fb.loginDelay = strconv.Itoa(cfg.Session.LoginDelayMS)
	m.fb.identity = cfg.Session.IdentityBackend
	m.fb.logLevel = cfg.Log.Level

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tasks per page").
				Value(&m.fb.pageSize).
				Validate(positiveInt),
			huh.NewSelect[string]().
				Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).
				Value(&m.fb.weekStart),
			huh.NewConfirm().
				Title("Seed demo tasks for new accounts").
				Value(&m.fb.seedDemo),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sign-in delay (ms)").
				Value(&m.fb.loginDelay).
				Validate(nonNegativeInt),
			huh.NewSelect[string]().
				Title("Keep sign-in in").
				Description("takes effect on next start").
				Options(
					huh.NewOption("Task database", model.BackendStore),
					huh.NewOption("System keyring", model.BackendKeyring),
				).
				Value(&m.fb.identity),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&m.fb.logLevel),
		),
	).WithWidth(min(m.width-4, 60)).WithShowHelp(true)

	return m.form.Init()
}

// Update handles messages for the settings form.
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
		cfg := m.apply()
		path := m.path
		return m, func() tea.Msg {
			if err := cfg.Validate(); err != nil {
				return DoneMsg{Err: err}
			}
			if err := model.SaveConfig(path, &cfg); err != nil {
				return DoneMsg{Err: err}
			}
			return DoneMsg{Saved: true, Config: cfg}
		}
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

// apply copies the bound form values onto the original configuration.
func (m Model) apply() model.AppConfig {
	cfg := m.cfg
	cfg.Tasks.PageSize, _ = strconv.Atoi(strings.TrimSpace(m.fb.pageSize))
	cfg.Tasks.SeedDemo = m.fb.seedDemo
	cfg.Filter.WeekStart = m.fb.weekStart
	cfg.Session.LoginDelayMS, _ = strconv.Atoi(strings.TrimSpace(m.fb.loginDelay))
	cfg.Session.IdentityBackend = m.fb.identity
	cfg.Log.Level = m.fb.logLevel
	return cfg
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		MarginBottom(1).
		Render("Settings")
	hint := theme.HelpStyle.Render("saved to " + m.path)
	return theme.DetailPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View(), "", hint))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number above zero")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number, zero or more")
	}
	return nil
}
