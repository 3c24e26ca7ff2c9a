package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/theme"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the records stored under this namespace",
	Long: `List the keys TaskNest has stored for the configured namespace,
with the medium each one lives in. Useful to check what logout erased.`,
	Args: cobra.NoArgs,
	RunE: runRecords,
}

// medium is one storage medium to enumerate.
type medium struct {
	name    string
	adapter store.Adapter
}

func runRecords(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	media := []medium{{e.rt.Config.Storage.Backend, e.rt.Tasks}}
	if e.rt.Identities != e.rt.Tasks {
		media = append(media, medium{model.BackendKeyring, e.rt.Identities})
	}

	prefix := e.rt.Config.Storage.Namespace + "/"
	var rows [][]string
	for _, m := range media {
		lister, ok := m.adapter.(store.Lister)
		if !ok {
			continue
		}
		keys, err := lister.Keys(cmd.Context(), prefix)
		if err != nil {
			return fmt.Errorf("listing %s records: %w", m.name, err)
		}
		for _, key := range keys {
			rows = append(rows, []string{key, m.name})
		}
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No records stored.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorSubtle)).
		Headers("KEY", "MEDIUM").
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
	return nil
}
