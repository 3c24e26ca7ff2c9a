package filter

import (
	"fmt"
	"testing"

	"github.com/nhle/tasknest/internal/model"
)

func makeTasks(n int) []model.Task {
	out := make([]model.Task, n)
	for i := range out {
		out[i] = model.Task{ID: fmt.Sprintf("t%d", i+1)}
	}
	return out
}

func TestPageCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n, size, want int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{15, 12, 2},
		{24, 12, 2},
		{25, 12, 3},
		{15, 0, 2},
	}
	for _, tt := range tests {
		if got := PageCount(tt.n, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()
	all := makeTasks(15)

	first := Paginate(all, 1, DefaultPageSize)
	if len(first) != 12 || first[0].ID != "t1" || first[11].ID != "t12" {
		t.Errorf("Unexpected first page: %d tasks", len(first))
	}

	second := Paginate(all, 2, DefaultPageSize)
	if len(second) != 3 || second[0].ID != "t13" {
		t.Errorf("Unexpected second page: %d tasks", len(second))
	}

	if got := Paginate(all, 3, DefaultPageSize); len(got) != 0 {
		t.Errorf("Expected empty page past the end, got %d", len(got))
	}
	if got := Paginate(all, 0, DefaultPageSize); len(got) != 12 {
		t.Errorf("Expected page 0 to behave as page 1, got %d", len(got))
	}
}
