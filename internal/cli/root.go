package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/app"
	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

// errNotSignedIn is returned by commands that need a saved sign-in.
var errNotSignedIn = errors.New("not signed in; run `tasknest login` first")

func init() {
	rootCmd = &cobra.Command{
		Use:   "tasknest",
		Short: "TaskNest - personal task manager for the terminal",
		Long: `TaskNest keeps a private task list per signed-in account.

Run without arguments to open the interactive board, or use the
subcommands to script it.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Path to the config file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(recordsCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	closeLog, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	queue := notify.NewQueue(32)
	rt, err := app.Open(cfg, notify.Multi{queue, notify.Log{}})
	if err != nil {
		return err
	}
	defer rt.Close()

	p := tea.NewProgram(app.New(rt, queue, configPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// initLogging sends logs to the configured file; the terminal belongs to
// the interface and to command output.
func initLogging(cfg *model.AppConfig) (func(), error) {
	if cfg.Log.File == "" {
		logger.Init(cfg.Log.Level, io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.Log.File, "tasknest")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.Init(cfg.Log.Level, f)
	return func() { f.Close() }, nil
}

// errReported is returned when a failure has already been printed as a
// notification.
var errReported = errors.New("operation failed")

// env is the state a scripted command runs against.
type env struct {
	rt       *app.Runtime
	closeLog func()
	failed   atomic.Bool
}

// openEnv loads configuration and opens the runtime. Notifications are
// printed to the command's stderr.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	closeLog, err := initLogging(cfg)
	if err != nil {
		return nil, err
	}

	e := &env{closeLog: closeLog}
	out := cmd.ErrOrStderr()
	printer := notify.Func(func(n model.Notification) {
		if n.Level == model.LevelError {
			e.failed.Store(true)
		}
		fmt.Fprintln(out, n.Message)
	})
	e.rt, err = app.Open(cfg, notify.Multi{printer, notify.Log{}})
	if err != nil {
		closeLog()
		return nil, err
	}
	return e, nil
}

func (e *env) Close() {
	e.rt.Close()
	e.closeLog()
}

// signedInBoard restores the saved sign-in and loads its board.
func (e *env) signedInBoard(ctx context.Context) (*board.Board, error) {
	if _, ok := e.rt.Session.Restore(ctx); !ok {
		return nil, errNotSignedIn
	}
	b := e.rt.NewBoard()
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// finish waits for b's pending writes, then stops its queue. It fails
// when any write was reported as failed.
func (e *env) finish(ctx context.Context, b *board.Board) error {
	defer b.Store().Close()
	if err := b.Store().Flush(ctx); err != nil {
		return fmt.Errorf("saving changes: %w", err)
	}
	if e.failed.Load() {
		return errReported
	}
	return nil
}
