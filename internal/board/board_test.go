package board_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/tasks"
	"github.com/nhle/tasknest/internal/testutil"
)

func newBoard(t *testing.T, n int) (*board.Board, *testutil.Clock) {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	clock := testutil.NewClock(time.Date(2025, time.October, 15, 9, 0, 0, 0, time.UTC))

	sess := session.New(session.Options{Namespace: "test", Identities: mem})
	if _, err := sess.Login(ctx, model.ProviderGoogle); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	ts := tasks.New(tasks.Options{Session: sess, Adapter: mem, Now: clock.Now, NewID: testutil.SeqIDs()})
	t.Cleanup(ts.Close)

	b := board.New(ts, board.Options{Now: clock.Now})
	for i := range n {
		status := model.StatusPending
		if i%3 == 0 {
			status = model.StatusCompleted
		}
		_, err := b.Create(ctx, tasks.TaskInput{
			Title:   fmt.Sprintf("Task %d", i+1),
			Status:  status,
			DueDate: clock.Now().AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	return b, clock
}

func TestFifteenTasksMakeTwoPages(t *testing.T) {
	t.Parallel()
	b, _ := newBoard(t, 15)

	if got := b.TotalPages(); got != 2 {
		t.Fatalf("Expected 2 pages, got %d", got)
	}
	if got := len(b.PageTasks()); got != 12 {
		t.Errorf("Expected 12 tasks on page 1, got %d", got)
	}
	b.NextPage()
	if b.Page() != 2 || len(b.PageTasks()) != 3 {
		t.Errorf("Expected 3 tasks on page 2, got page %d with %d", b.Page(), len(b.PageTasks()))
	}
	b.NextPage()
	if b.Page() != 2 {
		t.Errorf("Expected NextPage to stop at the last page, got %d", b.Page())
	}
}

func TestSetPageClamps(t *testing.T) {
	t.Parallel()
	b, _ := newBoard(t, 15)

	b.SetPage(99)
	if b.Page() != 2 {
		t.Errorf("Expected clamp to 2, got %d", b.Page())
	}
	b.SetPage(-4)
	if b.Page() != 1 {
		t.Errorf("Expected clamp to 1, got %d", b.Page())
	}

	empty, _ := newBoard(t, 0)
	empty.SetPage(3)
	if empty.Page() != 1 || empty.TotalPages() != 0 {
		t.Errorf("Expected page 1 of 0 on an empty board, got %d of %d", empty.Page(), empty.TotalPages())
	}
}

func TestChangingFiltersResetsPage(t *testing.T) {
	t.Parallel()
	search := ""
	due := filter.DueAll
	statuses := []model.Status{model.StatusPending}

	patches := map[string]board.FilterPatch{
		"statuses":        {Statuses: &statuses},
		"due":             {Due: &due},
		"unchanged value": {Search: &search},
	}
	for name, p := range patches {
		t.Run(name, func(t *testing.T) {
			b, _ := newBoard(t, 30)
			b.SetPage(2)
			b.SetFilters(p)
			if b.Page() != 1 {
				t.Errorf("Expected page 1 after SetFilters, got %d", b.Page())
			}
		})
	}

	b, _ := newBoard(t, 30)
	b.SetPage(2)
	b.SetFilters(board.FilterPatch{})
	if b.Page() != 2 {
		t.Errorf("Expected an empty patch to keep the page, got %d", b.Page())
	}
	b.ClearFilters()
	if b.Page() != 1 {
		t.Errorf("Expected ClearFilters to reset the page, got %d", b.Page())
	}
}

func TestSetFiltersMergesPartially(t *testing.T) {
	t.Parallel()
	b, _ := newBoard(t, 15)

	statuses := []model.Status{model.StatusCompleted}
	b.SetFilters(board.FilterPatch{Statuses: &statuses})
	search := "task 1"
	b.SetFilters(board.FilterPatch{Search: &search})

	c := b.Criteria()
	if len(c.Statuses) != 1 || c.Search != "task 1" {
		t.Fatalf("Expected both criteria kept, got %+v", c)
	}

	// Completed tasks are 1, 4, 7, 10 and 13; of those "task 1" matches 1, 10 and 13.
	got := b.Filtered()
	if len(got) != 3 {
		t.Errorf("Expected 3 matches, got %d", len(got))
	}
	for _, task := range got {
		if task.Status != model.StatusCompleted {
			t.Errorf("Unexpected status %s for %s", task.Status, task.Title)
		}
	}
}

func TestPageFollowsShrinkingCollection(t *testing.T) {
	t.Parallel()
	b, _ := newBoard(t, 13)
	ctx := context.Background()

	b.SetPage(2)
	last := b.PageTasks()
	if len(last) != 1 {
		t.Fatalf("Expected one task on page 2, got %d", len(last))
	}
	if err := b.Delete(ctx, last[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if b.Page() != 1 || len(b.PageTasks()) != 12 {
		t.Errorf("Expected to fall back to page 1, got page %d with %d tasks", b.Page(), len(b.PageTasks()))
	}
}

func TestReconfigureKeepsFiltersAndClampsPage(t *testing.T) {
	t.Parallel()
	b, _ := newBoard(t, 15)

	pending := []model.Status{model.StatusPending}
	b.SetFilters(board.FilterPatch{Statuses: &pending})
	b.SetPage(1)

	b.Reconfigure(board.Options{PageSize: 4})
	if got := b.TotalPages(); got != 3 {
		t.Fatalf("Expected 3 pages of pending tasks, got %d", got)
	}
	b.SetPage(3)

	b.Reconfigure(board.Options{PageSize: 20})
	if b.Page() != 1 {
		t.Errorf("Expected page clamped to 1, got %d", b.Page())
	}
	if len(b.Criteria().Statuses) != 1 {
		t.Errorf("Expected status filter to survive, got %v", b.Criteria().Statuses)
	}
}
