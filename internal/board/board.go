// Package board is what a presentation layer talks to: the task store
// plus the active filters and page.
package board

import (
	"context"
	"time"

	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/tasks"
)

// FilterPatch changes some filter criteria. Nil fields are kept.
type FilterPatch struct {
	Statuses   *[]model.Status
	Priorities *[]model.Priority
	Due        *filter.DueBucket
	Search     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p FilterPatch) IsEmpty() bool {
	return p.Statuses == nil && p.Priorities == nil && p.Due == nil && p.Search == nil
}

// Options configure a Board.
type Options struct {
	PageSize  int
	WeekStart time.Weekday
	Now       func() time.Time
}

// Board combines a task store with filter and page state.
type Board struct {
	tasks    *tasks.Store
	criteria filter.Criteria
	page     int
	pageSize int
	opts     filter.Options
	now      func() time.Time
}

// New creates a board on page 1 with no filters.
func New(ts *tasks.Store, opts Options) *Board {
	if opts.PageSize < 1 {
		opts.PageSize = filter.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{
		tasks:    ts,
		criteria: filter.Criteria{Due: filter.DueAll},
		page:     1,
		pageSize: opts.PageSize,
		opts:     filter.Options{WeekStart: opts.WeekStart},
		now:      opts.Now,
	}
}

// Reconfigure applies new page size and week start settings, keeping the
// active filters. The page is clamped to the new page count.
func (b *Board) Reconfigure(opts Options) {
	if opts.PageSize < 1 {
		opts.PageSize = filter.DefaultPageSize
	}
	b.pageSize = opts.PageSize
	b.opts.WeekStart = opts.WeekStart
	if opts.Now != nil {
		b.now = opts.Now
	}
	b.page = b.Page()
}

// Store returns the underlying task store.
func (b *Board) Store() *tasks.Store { return b.tasks }

// Now returns the board's current time.
func (b *Board) Now() time.Time { return b.now() }

// Criteria returns the active filters.
func (b *Board) Criteria() filter.Criteria { return b.criteria }

// SetFilters merges p into the active filters. Any non-empty patch moves
// back to page 1, even when the values did not change.
func (b *Board) SetFilters(p FilterPatch) {
	if p.IsEmpty() {
		return
	}
	if p.Statuses != nil {
		b.criteria.Statuses = append([]model.Status(nil), (*p.Statuses)...)
	}
	if p.Priorities != nil {
		b.criteria.Priorities = append([]model.Priority(nil), (*p.Priorities)...)
	}
	if p.Due != nil {
		b.criteria.Due = *p.Due
	}
	if p.Search != nil {
		b.criteria.Search = *p.Search
	}
	b.page = 1
}

// ClearFilters drops every filter and returns to page 1.
func (b *Board) ClearFilters() {
	b.criteria = filter.Criteria{Due: filter.DueAll}
	b.page = 1
}

// Filtered returns the tasks passing the active filters.
func (b *Board) Filtered() []model.Task {
	return filter.Apply(b.tasks.Tasks(), b.criteria, b.now(), b.opts)
}

// TotalPages returns the number of pages of filtered tasks.
func (b *Board) TotalPages() int {
	return filter.PageCount(len(b.Filtered()), b.pageSize)
}

// PageSize returns the number of tasks per page.
func (b *Board) PageSize() int { return b.pageSize }

// Page returns the active 1-based page, clamped to the pages that exist
// now.
func (b *Board) Page() int {
	return clamp(b.page, b.TotalPages())
}

// SetPage moves to page n, clamped to [1, max(1, TotalPages)].
func (b *Board) SetPage(n int) {
	b.page = clamp(n, b.TotalPages())
}

// NextPage and PrevPage step one page, stopping at the ends.
func (b *Board) NextPage() { b.SetPage(b.Page() + 1) }

func (b *Board) PrevPage() { b.SetPage(b.Page() - 1) }

// PageTasks returns the filtered tasks on the active page.
func (b *Board) PageTasks() []model.Task {
	filtered := b.Filtered()
	page := clamp(b.page, filter.PageCount(len(filtered), b.pageSize))
	return filter.Paginate(filtered, page, b.pageSize)
}

// IsLoading reports whether durable writes are outstanding.
func (b *Board) IsLoading() bool { return b.tasks.IsLoading() }

func (b *Board) Load(ctx context.Context) error { return b.tasks.Load(ctx) }

func (b *Board) Create(ctx context.Context, in tasks.TaskInput) (model.Task, error) {
	return b.tasks.Create(ctx, in)
}

func (b *Board) Update(ctx context.Context, id string, p tasks.TaskPatch) (model.Task, error) {
	return b.tasks.Update(ctx, id, p)
}

func (b *Board) Delete(ctx context.Context, id string) error {
	return b.tasks.Delete(ctx, id)
}

func (b *Board) Share(ctx context.Context, id, email string) (model.Task, error) {
	return b.tasks.Share(ctx, id, email)
}

func clamp(page, total int) int {
	total = max(total, 1)
	return min(max(page, 1), total)
}
