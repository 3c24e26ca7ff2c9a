// Package session tracks who is signed in and owns the identity record.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/notify"
	"github.com/nhle/tasknest/internal/store"
)

// State is a step of the sign-in lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrLoginInProgress      = errors.New("login already in progress")
	ErrAlreadyAuthenticated = errors.New("already logged in")
	ErrLoginFailed          = errors.New("login failed")
	ErrUnsupportedProvider  = errors.New("unsupported provider")
	errLoginAborted         = errors.New("logged out while signing in")
)

// Options configure a Session.
type Options struct {
	// Namespace prefixes every storage key.
	Namespace string

	// Identities holds the identity record.
	Identities store.Adapter

	// Tasks holds the per-identity task records. Logout erases the
	// signed-out identity's record from it.
	Tasks store.Adapter

	// LoginDelay simulates the provider round-trip.
	LoginDelay time.Duration

	Notifier notify.Notifier
}

// LogoutHook runs during Logout with the identity being signed out
// (zero when nobody was signed in).
type LogoutHook func(model.Identity)

// Session moves between Unauthenticated, Authenticating and
// Authenticated. It is safe for concurrent use.
type Session struct {
	opts Options

	mu       sync.Mutex
	state    State
	identity model.Identity
	hooks    []LogoutHook

	// gen changes on every logout so a login that was in flight notices
	// it has been superseded.
	gen uint64
}

// New creates an Unauthenticated session.
func New(opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Tasks == nil {
		opts.Tasks = opts.Identities
	}
	return &Session{opts: opts}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the signed-in identity.
func (s *Session) Current() (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated {
		return model.Identity{}, false
	}
	return s.identity, true
}

// Namespace returns the storage key prefix.
func (s *Session) Namespace() string {
	return s.opts.Namespace
}

// TasksKey returns the task record key of the signed-in identity.
func (s *Session) TasksKey() (string, bool) {
	id, ok := s.Current()
	if !ok {
		return "", false
	}
	return store.TasksKey(s.opts.Namespace, id.ID), true
}

// OnLogout registers a hook for the next Logout. Hooks run once and are
// then discarded, so each signed-in lifetime registers its own.
func (s *Session) OnLogout(hook LogoutHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Login signs in with provider after the simulated round-trip. A second
// call while one is in flight fails with ErrLoginInProgress.
func (s *Session) Login(ctx context.Context, provider model.Provider) (model.Identity, error) {
	s.mu.Lock()
	switch s.state {
	case Authenticating:
		s.mu.Unlock()
		return model.Identity{}, ErrLoginInProgress
	case Authenticated:
		s.mu.Unlock()
		return model.Identity{}, ErrAlreadyAuthenticated
	}
	s.state = Authenticating
	gen := s.gen
	s.mu.Unlock()

	log := logger.With("provider", provider)
	log.Info("login started")

	id, err := s.authenticate(ctx, provider)
	if err == nil {
		err = s.establish(gen, id)
	}
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.state = Unauthenticated
		}
		s.mu.Unlock()

		log.Warn("login failed", "error", err)
		notify.Failure(s.opts.Notifier, "", "Login failed. Please try again.")
		return model.Identity{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	log.Info("login succeeded", "identity", id.ID)
	notify.Success(s.opts.Notifier, "", fmt.Sprintf("Welcome back! Logged in with %s", provider))
	return id, nil
}

// authenticate waits out the simulated provider round-trip.
func (s *Session) authenticate(ctx context.Context, provider model.Provider) (model.Identity, error) {
	id, err := MockIdentity(provider)
	if err != nil {
		return model.Identity{}, err
	}

	if url, err := AuthURL(provider, uuid.NewString()); err == nil {
		logger.Debug("provider consent page", "url", url)
	}

	if s.opts.LoginDelay > 0 {
		timer := time.NewTimer(s.opts.LoginDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.Identity{}, ctx.Err()
		}
	}
	return id, nil
}

// establish persists id and marks the session Authenticated, unless a
// logout happened since the login began.
func (s *Session) establish(gen uint64, id model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return errLoginAborted
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.SaveJSON(ctx, s.opts.Identities, store.IdentityKey(s.opts.Namespace), id); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	s.identity = id
	s.state = Authenticated
	return nil
}

// Restore re-establishes a session from a persisted identity record.
// It reports false and stays Unauthenticated when there is no usable
// record.
func (s *Session) Restore(ctx context.Context) (model.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Authenticated {
		return s.identity, true
	}
	if s.state == Authenticating {
		return model.Identity{}, false
	}

	var id model.Identity
	if !store.LoadJSON(ctx, s.opts.Identities, store.IdentityKey(s.opts.Namespace), &id) {
		return model.Identity{}, false
	}
	if id.ID == "" || !id.Provider.Valid() {
		logger.Warn("ignoring invalid identity record", "id", id.ID, "provider", id.Provider)
		return model.Identity{}, false
	}

	s.identity = id
	s.state = Authenticated
	logger.Info("session restored", "identity", id.ID, "provider", id.Provider)
	return id, true
}

// Logout returns to Unauthenticated from any state. Hooks run first, then
// the identity record and the signed-out identity's task record are
// erased. The in-memory state is cleared even when erasing fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.identity
	hooks := s.hooks
	s.hooks = nil
	s.identity = model.Identity{}
	s.state = Unauthenticated
	s.gen++
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(prev)
	}

	// A session that was never restored still knows its scope through the
	// persisted record.
	if prev.ID == "" {
		var saved model.Identity
		if store.LoadJSON(ctx, s.opts.Identities, store.IdentityKey(s.opts.Namespace), &saved) {
			prev = saved
		}
	}

	var errs []error
	if err := s.opts.Identities.Remove(ctx, store.IdentityKey(s.opts.Namespace)); err != nil {
		errs = append(errs, err)
	}
	if prev.ID != "" {
		if err := s.opts.Tasks.Remove(ctx, store.TasksKey(s.opts.Namespace, prev.ID)); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Warn("logout could not erase saved records", "error", err)
		notify.Failure(s.opts.Notifier, "", "Logged out, but saved data could not be erased.")
		return fmt.Errorf("erasing session records: %w", err)
	}

	logger.Info("logged out", "identity", prev.ID)
	notify.Success(s.opts.Notifier, "", "Logged out successfully")
	return nil
}
