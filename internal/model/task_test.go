package model

import "testing"

func TestStatusNextStopsAtCompleted(t *testing.T) {
	t.Parallel()
	s := StatusPending
	want := []Status{StatusInProgress, StatusCompleted, StatusCompleted}
	for _, w := range want {
		s = s.Next()
		if s != w {
			t.Fatalf("Expected %s, got %s", w, s)
		}
	}
}

func TestCloneKeepsEmptyListsNonNil(t *testing.T) {
	t.Parallel()
	c := Task{ID: "1"}.Clone()
	if c.SharedWith == nil || c.Tags == nil {
		t.Fatalf("Expected non-nil empty lists, got %#v / %#v", c.SharedWith, c.Tags)
	}

	orig := Task{Tags: []string{"a"}}
	c = orig.Clone()
	c.Tags[0] = "b"
	if orig.Tags[0] != "a" {
		t.Error("Expected Clone not to alias the tag slice")
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()
	if _, err := ParseStatus("in-progress"); err != nil {
		t.Errorf("ParseStatus failed: %v", err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("Expected error for unknown status")
	}
	if _, err := ParsePriority("high"); err != nil {
		t.Errorf("ParsePriority failed: %v", err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("Expected error for unknown priority")
	}
}

func TestVisibleTo(t *testing.T) {
	t.Parallel()
	me := Identity{ID: "u1", Email: "me@example.com"}
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"owner", Task{OwnerID: "u1"}, true},
		{"collaborator", Task{OwnerID: "u2", SharedWith: []string{"x@y.z", "me@example.com"}}, true},
		{"stranger", Task{OwnerID: "u2", SharedWith: []string{"x@y.z"}}, false},
	}
	for _, tt := range tests {
		if got := tt.task.VisibleTo(me); got != tt.want {
			t.Errorf("%s: VisibleTo = %v, want %v", tt.name, got, tt.want)
		}
	}
}
