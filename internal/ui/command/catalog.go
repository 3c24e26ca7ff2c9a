package command

import (
	"strings"
)

// Entry describes one palette command.
type Entry struct {
	Name    string
	Aliases []string
	Usage   string
	Summary string
}

// Catalog is the palette vocabulary in display order.
var Catalog = []Entry{
	{Name: "new", Aliases: []string{"add"}, Usage: "new", Summary: "create a task"},
	{Name: "filter", Aliases: []string{"filters"}, Usage: "filter [due]", Summary: "open filters, or set the due filter"},
	{Name: "today", Usage: "today", Summary: "tasks due today"},
	{Name: "overdue", Usage: "overdue", Summary: "open tasks past their due date"},
	{Name: "this-week", Aliases: []string{"week"}, Usage: "this-week", Summary: "tasks due this week"},
	{Name: "next-week", Usage: "next-week", Summary: "tasks due next week"},
	{Name: "search", Usage: "search <text>", Summary: "match title, description or tags"},
	{Name: "clear", Usage: "clear", Summary: "remove every filter"},
	{Name: "page", Usage: "page <n>", Summary: "jump to a page"},
	{Name: "settings", Aliases: []string{"config"}, Usage: "settings", Summary: "edit preferences"},
	{Name: "help", Usage: "help", Summary: "show shortcuts"},
	{Name: "logout", Usage: "logout", Summary: "sign out and erase saved tasks"},
	{Name: "quit", Aliases: []string{"q"}, Usage: "quit", Summary: "leave TaskNest"},
}

// Parse splits input into a command name and its argument, resolving
// aliases. It reports false for blank input or an unknown name.
func Parse(input string) (CommandMsg, bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if name == "" {
		return CommandMsg{}, false
	}
	for _, e := range Catalog {
		if e.Name == name || containsName(e.Aliases, name) {
			return CommandMsg{Name: e.Name, Arg: strings.TrimSpace(arg)}, true
		}
	}
	return CommandMsg{Name: name}, false
}

// Matching returns catalog entries whose name or alias starts with prefix.
func Matching(prefix string) []Entry {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return Catalog
	}
	var out []Entry
	for _, e := range Catalog {
		if strings.HasPrefix(e.Name, prefix) || hasPrefixName(e.Aliases, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func hasPrefixName(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}
