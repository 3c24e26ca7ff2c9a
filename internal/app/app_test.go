package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
	"github.com/nhle/tasknest/internal/tasks"
	"github.com/nhle/tasknest/internal/ui/command"
	"github.com/nhle/tasknest/internal/ui/login"
	"github.com/nhle/tasknest/internal/ui/taskform"
)

func newTestModel(t *testing.T) (Model, *Runtime) {
	t.Helper()
	cfg := model.DefaultAppConfig()
	cfg.Storage.Backend = model.BackendMemory
	cfg.Session.LoginDelayMS = 0

	queue := notify.NewQueue(64)
	rt, err := Open(cfg, queue)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { rt.Close() })

	m := New(rt, queue, t.TempDir()+"/config.yaml")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), rt
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// signIn walks the model through a Google sign-in.
func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = step(t, m, restoredMsg{})
	if m.currentView != ViewLogin {
		t.Fatalf("Expected login view without a saved session, got %v", m.currentView)
	}
	m, cmd := step(t, m, login.RequestMsg{Provider: model.ProviderGoogle})
	if cmd == nil {
		t.Fatal("Expected a sign-in command")
	}
	m, _ = step(t, m, cmd())
	if m.currentView != ViewList || m.board == nil {
		t.Fatalf("Expected list view with a board after sign-in, got view %v", m.currentView)
	}
	return m
}

func TestSignInSeedsBoard(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m = signIn(t, m)

	if got := len(m.board.Store().Tasks()); got != 15 {
		t.Errorf("Expected 15 demo tasks, got %d", got)
	}
	if got := m.board.TotalPages(); got != 2 {
		t.Errorf("Expected 2 pages, got %d", got)
	}
}

func TestCreateFromForm(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m, _ = step(t, m, keyPress("n"))
	if m.currentView != ViewTaskCreate {
		t.Fatalf("Expected create form, got %v", m.currentView)
	}

	m, _ = step(t, m, taskform.TaskCreatedMsg{Input: tasks.TaskInput{
		Title:   "Renew passport",
		DueDate: time.Now(),
	}})
	if m.currentView != ViewList {
		t.Errorf("Expected list view after submit, got %v", m.currentView)
	}
	if got := len(m.board.Store().Tasks()); got != 16 {
		t.Errorf("Expected 16 tasks, got %d", got)
	}
}

func TestCommandPaletteFilters(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m, _ = step(t, m, keyPress(":"))
	if m.currentView != ViewCommand {
		t.Fatalf("Expected command palette, got %v", m.currentView)
	}
	m, _ = step(t, m, command.CommandMsg{Name: "overdue"})
	if m.currentView != ViewList {
		t.Errorf("Expected list view after command, got %v", m.currentView)
	}
	if got := m.board.Criteria().Due; got != filter.DueOverdue {
		t.Errorf("Expected overdue filter, got %q", got)
	}

	m, _ = step(t, m, command.CommandMsg{Name: "clear"})
	if m.board.Criteria().Active() {
		t.Errorf("Expected filters cleared, got %+v", m.board.Criteria())
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	t.Parallel()
	m, rt := newTestModel(t)
	m = signIn(t, m)
	if err := m.board.Store().Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	m, cmd := step(t, m, keyPress("L"))
	if cmd == nil {
		t.Fatal("Expected a logout command")
	}
	m, _ = step(t, m, cmd())
	if m.currentView != ViewLogin || m.board != nil {
		t.Errorf("Expected login view with no board, got view %v", m.currentView)
	}
	if _, ok := rt.Session.Current(); ok {
		t.Error("Expected session to be signed out")
	}
}

func TestNotificationShowsToast(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)

	n := notify.New(model.LevelSuccess, "", "Task created successfully!")
	m, _ = step(t, m, notificationMsg(n))
	if m.toast == nil || m.toast.Message != n.Message {
		t.Fatalf("Expected toast %q, got %+v", n.Message, m.toast)
	}

	m, _ = step(t, m, toastExpiredMsg{id: n.ID})
	if m.toast != nil {
		t.Error("Expected toast to expire")
	}
}
