package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
	"github.com/nhle/tasknest/internal/session"
	appsync "github.com/nhle/tasknest/internal/sync"
	"github.com/nhle/tasknest/internal/theme"
	"github.com/nhle/tasknest/internal/ui"
	"github.com/nhle/tasknest/internal/ui/command"
	"github.com/nhle/tasknest/internal/ui/detail"
	"github.com/nhle/tasknest/internal/ui/filterform"
	helpview "github.com/nhle/tasknest/internal/ui/help"
	"github.com/nhle/tasknest/internal/ui/login"
	"github.com/nhle/tasknest/internal/ui/settings"
	"github.com/nhle/tasknest/internal/ui/share"
	"github.com/nhle/tasknest/internal/ui/taskform"
	"github.com/nhle/tasknest/internal/ui/tasklist"
)

// toastTTL is how long a notification stays in the status bar.
const toastTTL = 4 * time.Second

// flushTimeout bounds how long quitting waits for pending writes.
const flushTimeout = 3 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewList
	ViewDetail
	ViewTaskCreate
	ViewTaskEdit
	ViewShare
	ViewFilter
	ViewHelp
	ViewCommand
	ViewSettings
)

// restoredMsg reports whether a persisted sign-in was found at startup.
type restoredMsg struct {
	identity model.Identity
	ok       bool
}

// loginResultMsg carries the outcome of a sign-in attempt.
type loginResultMsg struct {
	identity model.Identity
	err      error
}

// loggedOutMsg is sent once Logout has returned.
type loggedOutMsg struct{ err error }

// notificationMsg delivers one queued notification to the status bar.
type notificationMsg model.Notification

// toastExpiredMsg clears the toast with the given id, if still shown.
type toastExpiredMsg struct{ id string }

// Model is the root Bubble Tea model that manages view routing, layout
// and the signed-in board.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	rt           *Runtime
	configPath   string
	queue        *notify.Queue
	board        *board.Board
	keys         *keys.KeyMap
	loginView    login.Model
	taskList     tasklist.Model
	detail       detail.Model
	taskForm     taskform.Model
	shareView    share.Model
	filterView   filterform.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model
	toast        *model.Notification
	ready        bool
}

// New creates the root model over rt. Notifications sent to queue are
// shown in the status bar; configPath is where settings are saved.
func New(rt *Runtime, queue *notify.Queue, configPath string) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewLogin,
		rt:           rt,
		configPath:   configPath,
		queue:        queue,
		keys:         k,
		loginView:    login.New(80, 24),
		taskList:     tasklist.New(nil, k, 80, 24),
		detail:       detail.New(k, 80, 24),
		taskForm:     taskform.New(80, 24),
		shareView:    share.New(80, 24),
		filterView:   filterform.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settings.New(configPath, 80, 24),
	}
}

// Init looks for a persisted sign-in and starts listening for
// notifications.
func (m Model) Init() tea.Cmd {
	sess := m.rt.Session
	return tea.Batch(
		func() tea.Msg {
			id, ok := sess.Restore(context.Background())
			return restoredMsg{identity: id, ok: ok}
		},
		m.waitForNotification(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.shareView.SetSize(w, h)
		m.filterView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case restoredMsg:
		if msg.ok {
			logger.Info("restored session", "identity", msg.identity.ID)
			return m, m.startBoard()
		}
		m.currentView = ViewLogin
		return m, m.loginView.Start("")

	case login.RequestMsg:
		sess := m.rt.Session
		p := msg.Provider
		return m, func() tea.Msg {
			id, err := sess.Login(context.Background(), p)
			return loginResultMsg{identity: id, err: err}
		}

	case loginResultMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrAlreadyAuthenticated) {
			if m.currentView != ViewLogin {
				return m, nil
			}
			return m, m.loginView.Start("Login failed. Please try again.")
		}
		return m, m.startBoard()

	case loggedOutMsg:
		if msg.err != nil {
			logger.Warn("logout incomplete", "error", msg.err)
		}
		m.board = nil
		m.taskList.SetBoard(nil)
		m.detail.Clear()
		m.currentView = ViewLogin
		return m, m.loginView.Start("")

	case notificationMsg:
		n := model.Notification(msg)
		m.toast = &n
		id := n.ID
		return m, tea.Batch(
			m.waitForNotification(),
			tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} }),
		)

	case toastExpiredMsg:
		if m.toast != nil && m.toast.ID == msg.id {
			m.toast = nil
		}
		return m, nil

	case appsync.WriteResultMsg:
		if m.board == nil {
			return m, nil
		}
		if msg.Err != nil {
			logger.Warn("durable write failed", "key", msg.Key, "error", msg.Err)
		}
		return m, tea.Batch(m.refresh(), m.board.Store().Writer().WaitForNextResult())

	case tasklist.SelectedTaskMsg:
		return m, m.openDetail(msg.TaskID)

	case detail.BackMsg:
		m.currentView = ViewList
		return m, m.refresh()

	case detail.ActionMsg:
		return m, m.handleTaskAction(msg.Action, msg.TaskID)

	case taskform.TaskCreatedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Input)

	case taskform.TaskUpdatedMsg:
		return m, m.updateTask(msg.TaskID, msg.Patch)

	case taskform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case share.SubmitMsg:
		return m, m.shareTask(msg.TaskID, msg.Email)

	case share.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case filterform.AppliedMsg:
		m.currentView = ViewList
		if m.board != nil {
			m.board.SetFilters(msg.Patch)
		}
		return m, m.refresh()

	case filterform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case settings.DoneMsg:
		m.currentView = m.previousView
		switch {
		case msg.Err != nil:
			logger.Warn("saving settings failed", "error", msg.Err)
			notify.Failure(m.rt.Notifier, "", "Settings could not be saved")
		case msg.Saved:
			cfg := msg.Config
			m.rt.Config = &cfg
			if m.board != nil {
				m.board.Reconfigure(m.rt.BoardOptions())
			}
			notify.Success(m.rt.Notifier, "", "Settings saved")
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKeys(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that are not owned by the active view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, m.quit(), true
	}
	if !m.acceptsShortcuts() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true
	}

	if m.currentView == ViewHelp && key.Matches(msg, m.keys.Back) {
		m.currentView = m.previousView
		return m, nil, true
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit(), true
	case key.Matches(msg, m.keys.New):
		return m, m.openCreate(), true
	case key.Matches(msg, m.keys.Filter):
		return m, m.openFilters(), true
	case key.Matches(msg, m.keys.ClearFilters):
		m.board.ClearFilters()
		return m, m.refresh(), true
	case key.Matches(msg, m.keys.Settings):
		return m, m.openSettings(), true
	case key.Matches(msg, m.keys.Logout):
		return m, m.logout(), true
	}

	if t, ok := m.taskList.SelectedTask(); ok {
		action := ""
		switch {
		case key.Matches(msg, m.keys.Edit):
			action = detail.ActionEdit
		case key.Matches(msg, m.keys.CycleStatus):
			action = detail.ActionStatus
		case key.Matches(msg, m.keys.Delete):
			action = detail.ActionDelete
		case key.Matches(msg, m.keys.Share):
			action = detail.ActionShare
		}
		if action != "" {
			return m, m.handleTaskAction(action, t.ID), true
		}
	}
	return m, nil, false
}

// acceptsShortcuts reports whether single-key shortcuts apply, which is
// not the case while a form or text input has focus.
func (m Model) acceptsShortcuts() bool {
	switch m.currentView {
	case ViewList:
		return m.board != nil && !m.taskList.Searching()
	case ViewDetail, ViewHelp:
		return true
	default:
		return false
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewShare:
		m.shareView, cmd = m.shareView.Update(msg)
	case ViewFilter:
		m.filterView, cmd = m.filterView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("TaskNest", m.accountLabel())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.toast)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewTaskCreate, ViewTaskEdit:
		return m.taskForm.View()
	case ViewShare:
		return m.shareView.View()
	case ViewFilter:
		return m.filterView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// accountLabel shows who is signed in, and whether writes are pending.
func (m Model) accountLabel() string {
	id, ok := m.rt.Session.Current()
	if !ok {
		return m.rt.Session.State().String()
	}
	label := id.Name + " <" + id.Email + "> " + theme.ProviderStyle(id.Provider).Render(string(id.Provider))
	if m.board != nil && m.board.IsLoading() {
		label = "saving… " + label
	}
	return label
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		if m.loginView.Waiting() {
			return "signing in…"
		}
		return "enter sign in | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | x status | s share | d delete | j/k scroll"
	case ViewTaskCreate, ViewTaskEdit, ViewShare, ViewFilter, ViewSettings:
		return "enter submit | esc cancel"
	default:
		if m.taskList.Searching() {
			return "enter apply search | esc clear"
		}
		if summary := m.taskList.FilterSummary(); summary != "" {
			return summary + " | F clear"
		}
		return m.helpView.ShortHelp()
	}
}

// waitForNotification blocks until the next notification is queued.
func (m Model) waitForNotification() tea.Cmd {
	if m.queue == nil {
		return nil
	}
	ch := m.queue.C()
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

// startBoard builds the board for the signed-in identity, loads its
// tasks and subscribes to its write results.
func (m *Model) startBoard() tea.Cmd {
	b := m.rt.NewBoard()
	if err := b.Load(context.Background()); err != nil {
		logger.Warn("loading tasks failed", "error", err)
	}
	m.board = b
	m.taskList.SetBoard(b)
	m.currentView = ViewList
	return tea.Batch(m.taskList.Refresh(), b.Store().Writer().WaitForNextResult())
}

// refresh re-renders the list and, when shown, the detail view.
func (m *Model) refresh() tea.Cmd {
	if m.board == nil {
		return nil
	}
	if id := m.detail.TaskID(); id != "" {
		if t, ok := m.board.Store().Get(id); ok {
			m.detail.SetTask(t, m.ownerLabel(t), m.board.Now())
		} else if m.currentView == ViewDetail {
			m.detail.Clear()
			m.currentView = ViewList
		}
	}
	return m.taskList.Refresh()
}

// ownerLabel names the owner of t from the signed-in identity's view.
func (m Model) ownerLabel(t model.Task) string {
	if id, ok := m.rt.Session.Current(); ok && id.ID == t.OwnerID {
		return "you"
	}
	return t.OwnerID
}

// quit waits briefly for pending writes, then exits.
func (m Model) quit() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		if b != nil {
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			defer cancel()
			if err := b.Store().Flush(ctx); err != nil {
				logger.Warn("pending writes not flushed", "error", err)
			}
		}
		return tea.QuitMsg{}
	}
}

// logout ends the session. The task store drains its queue in the
// logout hook before the session erases the records.
func (m Model) logout() tea.Cmd {
	sess := m.rt.Session
	return func() tea.Msg {
		return loggedOutMsg{err: sess.Logout(context.Background())}
	}
}
