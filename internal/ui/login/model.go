package login

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
)

// RequestMsg asks the application to sign in with a provider.
type RequestMsg struct {
	Provider model.Provider
}

type bindings struct {
	provider model.Provider
}

// Model is the sign-in screen: a provider picker, then a spinner while
// the session authenticates.
type Model struct {
	form         *huh.Form
	fb           *bindings
	spinner      spinner.Model
	waiting      bool
	errorMessage string
	width        int
	height       int
}

// New creates the sign-in screen.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		fb:      &bindings{provider: model.ProviderGoogle},
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start shows the provider picker. A non-empty errMsg is displayed above it.
func (m *Model) Start(errMsg string) tea.Cmd {
	m.waiting = false
	m.errorMessage = errMsg

	opts := make([]huh.Option[model.Provider], len(model.Providers))
	for i, p := range model.Providers {
		label := "Continue with Google"
		if p == model.ProviderGitHub {
			label = "Continue with GitHub"
		}
		opts[i] = huh.NewOption(label, p)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Provider]().
				Title("Sign in to TaskNest").
				Options(opts...).
				Value(&m.fb.provider),
		),
	).WithWidth(40).WithShowHelp(false)
	return m.form.Init()
}

// Waiting reports whether a sign-in is in flight.
func (m Model) Waiting() bool {
	return m.waiting
}

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.waiting {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.waiting = true
		m.errorMessage = ""
		p := m.fb.provider
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return RequestMsg{Provider: p} },
		)
	}
	if m.form.State == huh.StateAborted {
		// The picker cannot be dismissed; start it again.
		return m, m.Start("")
	}
	return m, cmd
}

// View renders the sign-in screen centered in the content area.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render("TaskNest")
	tagline := theme.HelpStyle.Render("Organize, share and track your tasks.")

	var body string
	switch {
	case m.waiting:
		body = m.spinner.View() + " Signing in with " +
			theme.ProviderStyle(m.fb.provider).Render(string(m.fb.provider)) + "..."
	case m.form != nil:
		body = m.form.View()
	}

	sections := []string{title, tagline, ""}
	if m.errorMessage != "" {
		sections = append(sections, theme.OverdueStyle.Render(m.errorMessage), "")
	}
	sections = append(sections, body)

	panel := theme.DetailPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
