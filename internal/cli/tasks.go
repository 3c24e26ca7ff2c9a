package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/filter"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/tasks"
	"github.com/nhle/tasknest/internal/theme"
)

const dateLayout = "2006-01-02"

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, one page at a time",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

var shareCmd = &cobra.Command{
	Use:   "share <id> <email>",
	Short: "Share a task with a collaborator",
	Args:  cobra.ExactArgs(2),
	RunE:  runShare,
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "Only these statuses (pending, in-progress, completed)")
	listCmd.Flags().StringSlice("priority", nil, "Only these priorities (low, medium, high)")
	listCmd.Flags().String("due", "all", "Due filter: all, today, overdue, this-week, next-week")
	listCmd.Flags().String("search", "", "Match title, description or tags")
	listCmd.Flags().Int("page", 1, "Page number")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().String("description", "", "Description")
		c.Flags().String("priority", "", "Priority: low, medium, high")
		c.Flags().String("status", "", "Status: pending, in-progress, completed")
		c.Flags().String("due", "", "Due date (YYYY-MM-DD)")
		c.Flags().StringSlice("tags", nil, "Tags")
	}
	editCmd.Flags().String("title", "", "Title")
}

func runList(cmd *cobra.Command, _ []string) error {
	patch, err := filterPatchFromFlags(cmd)
	if err != nil {
		return err
	}
	page, _ := cmd.Flags().GetInt("page")

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	b, err := e.signedInBoard(ctx)
	if err != nil {
		return err
	}
	defer e.finish(ctx, b)

	b.SetFilters(patch)
	b.SetPage(page)

	out := cmd.OutOrStdout()
	rows := b.PageTasks()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}
	fmt.Fprintln(out, renderTable(rows, b.Now()))
	fmt.Fprintf(out, "page %d/%d · %d tasks\n", b.Page(), b.TotalPages(), len(b.Filtered()))
	return nil
}

func filterPatchFromFlags(cmd *cobra.Command) (board.FilterPatch, error) {
	var patch board.FilterPatch

	rawStatuses, _ := cmd.Flags().GetStringSlice("status")
	statuses := make([]model.Status, 0, len(rawStatuses))
	for _, s := range rawStatuses {
		st, err := model.ParseStatus(s)
		if err != nil {
			return patch, err
		}
		statuses = append(statuses, st)
	}
	patch.Statuses = &statuses

	rawPriorities, _ := cmd.Flags().GetStringSlice("priority")
	priorities := make([]model.Priority, 0, len(rawPriorities))
	for _, s := range rawPriorities {
		p, err := model.ParsePriority(s)
		if err != nil {
			return patch, err
		}
		priorities = append(priorities, p)
	}
	patch.Priorities = &priorities

	rawDue, _ := cmd.Flags().GetString("due")
	due, err := filter.ParseDueBucket(rawDue)
	if err != nil {
		return patch, err
	}
	patch.Due = &due

	search, _ := cmd.Flags().GetString("search")
	patch.Search = &search
	return patch, nil
}

func renderTable(rows []model.Task, now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorSubtle)).
		Headers("ID", "TITLE", "STATUS", "PRIORITY", "DUE", "TAGS")

	for _, task := range rows {
		due := ""
		if !task.DueDate.IsZero() {
			due = task.DueDate.Local().Format(dateLayout)
			if filter.IsOverdue(task, now) {
				due += " !"
			}
		}
		t.Row(task.ID, task.Title, string(task.Status), string(task.Priority), due, strings.Join(task.Tags, ","))
	}
	return t.Render()
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := tasks.TaskInput{Title: args[0]}
	in.Description, _ = cmd.Flags().GetString("description")
	in.Tags, _ = cmd.Flags().GetStringSlice("tags")

	if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
		p, err := model.ParsePriority(raw)
		if err != nil {
			return err
		}
		in.Priority = p
	}
	if raw, _ := cmd.Flags().GetString("status"); raw != "" {
		s, err := model.ParseStatus(raw)
		if err != nil {
			return err
		}
		in.Status = s
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	b, err := e.signedInBoard(ctx)
	if err != nil {
		return err
	}

	in.DueDate = b.Now()
	if raw, _ := cmd.Flags().GetString("due"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return err
		}
		in.DueDate = d
	}

	task, err := b.Create(ctx, in)
	if err != nil {
		b.Store().Close()
		return err
	}
	if err := e.finish(ctx, b); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), task.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	var patch tasks.TaskPatch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		patch.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		patch.Description = &v
	}
	if flags.Changed("priority") {
		raw, _ := flags.GetString("priority")
		p, err := model.ParsePriority(raw)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		s, err := model.ParseStatus(raw)
		if err != nil {
			return err
		}
		patch.Status = &s
	}
	if flags.Changed("due") {
		raw, _ := flags.GetString("due")
		d, err := parseDate(raw)
		if err != nil {
			return err
		}
		patch.DueDate = &d
	}
	if flags.Changed("tags") {
		v, _ := flags.GetStringSlice("tags")
		patch.Tags = &v
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	b, err := e.signedInBoard(ctx)
	if err != nil {
		return err
	}
	if _, err := b.Update(ctx, args[0], patch); err != nil {
		b.Store().Close()
		return err
	}
	return e.finish(ctx, b)
}

func runRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	b, err := e.signedInBoard(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, args[0]); err != nil {
		b.Store().Close()
		return err
	}
	return e.finish(ctx, b)
}

func runShare(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	b, err := e.signedInBoard(ctx)
	if err != nil {
		return err
	}
	if _, err := b.Share(ctx, args[0], args[1]); err != nil {
		b.Store().Close()
		return err
	}
	return e.finish(ctx, b)
}

// parseDate reads a YYYY-MM-DD date as midnight local time.
func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
