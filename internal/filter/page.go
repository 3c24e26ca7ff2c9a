package filter

import "github.com/nhle/tasknest/internal/model"

// DefaultPageSize is the number of tasks shown per page.
const DefaultPageSize = 12

// PageCount returns ceil(n / size). A non-positive size falls back to
// DefaultPageSize.
func PageCount(n, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the tasks on 1-based page. Pages past the end are
// empty; pages below 1 are treated as page 1.
func Paginate(tasks []model.Task, page, size int) []model.Task {
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(tasks) {
		return nil
	}
	end := min(start+size, len(tasks))
	return tasks[start:end]
}
