package app

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/tasks"
	"github.com/nhle/tasknest/internal/ui/command"
	"github.com/nhle/tasknest/internal/ui/detail"
)

// Task mutations apply to the in-memory collection at once; the durable
// write and its notification follow through the write-behind queue, so
// these helpers only need to re-render.

// openDetail shows the task with the given id.
func (m *Model) openDetail(taskID string) tea.Cmd {
	if m.board == nil {
		return nil
	}
	t, ok := m.board.Store().Get(taskID)
	if !ok {
		return m.refresh()
	}
	m.detail.SetTask(t, m.ownerLabel(t), m.board.Now())
	m.previousView = m.currentView
	m.currentView = ViewDetail
	return nil
}

// handleTaskAction routes a task action from the list or detail view.
func (m *Model) handleTaskAction(action, taskID string) tea.Cmd {
	if m.board == nil {
		return nil
	}
	t, ok := m.board.Store().Get(taskID)
	if !ok {
		return m.refresh()
	}

	switch action {
	case detail.ActionEdit:
		m.previousView = m.currentView
		m.currentView = ViewTaskEdit
		return m.taskForm.StartEdit(t)

	case detail.ActionShare:
		m.previousView = m.currentView
		m.currentView = ViewShare
		return m.shareView.Start(t)

	case detail.ActionStatus:
		if t.IsCompleted() {
			return nil
		}
		next := t.Status.Next()
		return m.updateTask(taskID, tasks.TaskPatch{Status: &next})

	case detail.ActionDelete:
		if err := m.board.Delete(context.Background(), taskID); err != nil {
			logger.Debug("delete rejected", "task_id", taskID, "error", err)
		}
		if m.currentView == ViewDetail {
			m.detail.Clear()
			m.currentView = ViewList
		}
		return m.refresh()
	}
	return nil
}

// createTask adds a task and returns to the list.
func (m *Model) createTask(in tasks.TaskInput) tea.Cmd {
	if m.board == nil {
		return nil
	}
	if _, err := m.board.Create(context.Background(), in); err != nil {
		logger.Debug("create rejected", "error", err)
	}
	return m.refresh()
}

// updateTask applies patch and returns to the view the edit started from.
func (m *Model) updateTask(taskID string, patch tasks.TaskPatch) tea.Cmd {
	if m.board == nil {
		return nil
	}
	if m.currentView == ViewTaskEdit {
		m.currentView = m.previousView
	}
	if _, err := m.board.Update(context.Background(), taskID, patch); err != nil {
		logger.Debug("update rejected", "task_id", taskID, "error", err)
	}
	return m.refresh()
}

// shareTask adds a collaborator and returns to the previous view.
func (m *Model) shareTask(taskID, email string) tea.Cmd {
	m.currentView = m.previousView
	if m.board == nil {
		return nil
	}
	if _, err := m.board.Share(context.Background(), taskID, email); err != nil {
		logger.Debug("share rejected", "task_id", taskID, "error", err)
	}
	return m.refresh()
}

func (m *Model) openCreate() tea.Cmd {
	if m.board == nil {
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewTaskCreate
	return m.taskForm.StartCreate(m.board.Now())
}

func (m *Model) openFilters() tea.Cmd {
	if m.board == nil {
		return nil
	}
	m.previousView = m.currentView
	m.currentView = ViewFilter
	return m.filterView.Start(m.board.Criteria())
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Start(*m.rt.Config)
}

// setDue narrows the list to one due-date bucket.
func (m *Model) setDue(bucket filter.DueBucket) tea.Cmd {
	if m.board == nil {
		return nil
	}
	m.currentView = ViewList
	m.board.SetFilters(board.FilterPatch{Due: &bucket})
	return m.refresh()
}

// executeCommand runs a command chosen in the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	name, arg := cmd.Name, cmd.Arg

	switch name {
	case "quit":
		return m.quit()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "settings":
		return m.openSettings()
	case "logout":
		return m.logout()
	}

	// The remaining commands need a signed-in board.
	if m.board == nil {
		return nil
	}

	switch name {
	case "new":
		return m.openCreate()
	case "filter":
		if arg == "" {
			return m.openFilters()
		}
		bucket, err := filter.ParseDueBucket(arg)
		if err != nil {
			return nil
		}
		return m.setDue(bucket)
	case "today":
		return m.setDue(filter.DueToday)
	case "overdue":
		return m.setDue(filter.DueOverdue)
	case "this-week":
		return m.setDue(filter.DueThisWeek)
	case "next-week":
		return m.setDue(filter.DueNextWeek)
	case "clear":
		m.board.ClearFilters()
		m.currentView = ViewList
		return m.refresh()
	case "search":
		m.board.SetFilters(board.FilterPatch{Search: &arg})
		m.currentView = ViewList
		return m.refresh()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil
		}
		m.board.SetPage(n)
		m.currentView = ViewList
		return m.refresh()
	}
	return nil
}
