package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nhle/tasknest/internal/board"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/tasks"
)

// Runtime owns the storage media and the session for one process. Task
// stores and boards are built per signed-in lifetime with NewBoard.
type Runtime struct {
	Config     *model.AppConfig
	Tasks      store.Adapter
	Identities store.Adapter
	Session    *session.Session
	Notifier   notify.Notifier

	closers []func() error
}

// Open opens the media selected by cfg and creates an Unauthenticated
// session. Notifications go to n.
func Open(cfg *model.AppConfig, n notify.Notifier) (*Runtime, error) {
	if n == nil {
		n = notify.Discard
	}
	rt := &Runtime{Config: cfg, Notifier: n}

	switch cfg.Storage.Backend {
	case model.BackendMemory:
		rt.Tasks = store.NewMemoryStore()
	default:
		db, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening task store: %w", err)
		}
		rt.Tasks = db
		rt.closers = append(rt.closers, db.Close)
	}

	rt.Identities = rt.Tasks
	if cfg.Session.IdentityBackend == model.BackendKeyring {
		ring, err := store.OpenKeyringStore(filepath.Dir(cfg.Storage.Path))
		if err != nil {
			// The session still works from the task medium.
			logger.Warn("keyring unavailable, keeping sign-in in the task store", "error", err)
		} else {
			rt.Identities = ring
		}
	}

	rt.Session = session.New(session.Options{
		Namespace:  cfg.Storage.Namespace,
		Identities: rt.Identities,
		Tasks:      rt.Tasks,
		LoginDelay: cfg.Session.LoginDelay(),
		Notifier:   n,
	})
	return rt, nil
}

// NewBoard builds the task store and board for the current sign-in.
func (rt *Runtime) NewBoard() *board.Board {
	ts := tasks.New(tasks.Options{
		Session:  rt.Session,
		Adapter:  rt.Tasks,
		Notifier: rt.Notifier,
		SeedDemo: rt.Config.Tasks.SeedDemo,
	})
	return board.New(ts, rt.BoardOptions())
}

// BoardOptions derives board settings from the configuration.
func (rt *Runtime) BoardOptions() board.Options {
	return board.Options{
		PageSize:  rt.Config.Tasks.PageSize,
		WeekStart: rt.Config.Filter.Weekday(),
	}
}

// Close releases the storage media.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
