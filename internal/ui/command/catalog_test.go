package command

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  CommandMsg
		ok    bool
	}{
		{"new", CommandMsg{Name: "new"}, true},
		{"  ADD ", CommandMsg{Name: "new"}, true},
		{"week", CommandMsg{Name: "this-week"}, true},
		{"page 3", CommandMsg{Name: "page", Arg: "3"}, true},
		{"search  Budget Review ", CommandMsg{Name: "search", Arg: "Budget Review"}, true},
		{"q", CommandMsg{Name: "quit"}, true},
		{"", CommandMsg{}, false},
		{"frobnicate now", CommandMsg{Name: "frobnicate"}, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Parse(%q) = %+v, %v; expected %+v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatching(t *testing.T) {
	t.Parallel()

	if got := len(Matching("")); got != len(Catalog) {
		t.Errorf("Expected every entry for an empty prefix, got %d", got)
	}

	got := Matching("ne")
	if len(got) != 2 || got[0].Name != "new" || got[1].Name != "next-week" {
		t.Errorf("Expected new and next-week for %q, got %+v", "ne", got)
	}

	// Aliases match too.
	if got := Matching("conf"); len(got) != 1 || got[0].Name != "settings" {
		t.Errorf("Expected settings via its alias, got %+v", got)
	}
}
