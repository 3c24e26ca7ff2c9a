package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/testutil"
)

const ns = "test"

func newSession(t *testing.T, delay time.Duration) (*Session, *store.MemoryStore, *testutil.Recorder) {
	t.Helper()
	m := store.NewMemoryStore()
	rec := &testutil.Recorder{}
	s := New(Options{
		Namespace:  ns,
		Identities: m,
		LoginDelay: delay,
		Notifier:   rec,
	})
	return s, m, rec
}

func TestLoginEstablishesIdentity(t *testing.T) {
	t.Parallel()
	s, m, rec := newSession(t, 0)
	ctx := context.Background()

	if s.State() != Unauthenticated {
		t.Fatalf("Expected initial state unauthenticated, got %s", s.State())
	}

	id, err := s.Login(ctx, model.ProviderGoogle)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if id.Email != "user@gmail.com" || id.Name != "Google User" || id.Provider != model.ProviderGoogle {
		t.Errorf("Unexpected identity: %+v", id)
	}
	if s.State() != Authenticated {
		t.Errorf("Expected authenticated, got %s", s.State())
	}
	if cur, ok := s.Current(); !ok || cur != id {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}

	var saved model.Identity
	if !store.LoadJSON(ctx, m, store.IdentityKey(ns), &saved) || saved != id {
		t.Errorf("Expected identity record to be persisted, got %+v", saved)
	}

	if got := rec.Messages(); len(got) != 1 || got[0] != "Welcome back! Logged in with google" {
		t.Errorf("Unexpected notifications: %v", got)
	}
}

func TestMockIdentityIsDeterministicPerProvider(t *testing.T) {
	t.Parallel()
	g1, err := MockIdentity(model.ProviderGoogle)
	if err != nil {
		t.Fatalf("MockIdentity failed: %v", err)
	}
	g2, _ := MockIdentity(model.ProviderGoogle)
	gh, _ := MockIdentity(model.ProviderGitHub)

	if g1.ID != g2.ID {
		t.Error("Expected the same provider to derive the same id")
	}
	if g1.ID == gh.ID || g1.Email == gh.Email {
		t.Error("Expected providers to derive distinct identities")
	}
	if gh.Email != "user@github.com" || gh.Name != "GitHub User" {
		t.Errorf("Unexpected github identity: %+v", gh)
	}
}

func TestLoginRejectsUnknownProvider(t *testing.T) {
	t.Parallel()
	s, _, rec := newSession(t, 0)

	_, err := s.Login(context.Background(), model.Provider("myspace"))
	if !errors.Is(err, ErrLoginFailed) || !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("Expected login failure for unknown provider, got %v", err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("Expected unauthenticated after failure, got %s", s.State())
	}
	if n, ok := rec.Last(); !ok || n.Message != "Login failed. Please try again." || n.Level != model.LevelError {
		t.Errorf("Unexpected notification: %+v", n)
	}
}

func TestLoginStorageFailure(t *testing.T) {
	t.Parallel()
	s, m, _ := newSession(t, 0)
	m.FailWrites(errors.New("unavailable"))

	_, err := s.Login(context.Background(), model.ProviderGitHub)
	if !errors.Is(err, ErrLoginFailed) || !store.IsStorageError(err) {
		t.Fatalf("Expected storage-caused login failure, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Expected no identity after failed login")
	}
}

func TestConcurrentLoginRejected(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 200*time.Millisecond)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, model.ProviderGoogle)
		first <- err
	}()

	deadline := time.Now().Add(time.Second)
	for s.State() != Authenticating {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for authenticating state")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Login(ctx, model.ProviderGitHub); !errors.Is(err, ErrLoginInProgress) {
		t.Errorf("Expected ErrLoginInProgress, got %v", err)
	}
	if err := <-first; err != nil {
		t.Fatalf("First login failed: %v", err)
	}
	if id, _ := s.Current(); id.Provider != model.ProviderGoogle {
		t.Errorf("Expected the first login to win, got %s", id.Provider)
	}
	if _, err := s.Login(ctx, model.ProviderGitHub); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Errorf("Expected ErrAlreadyAuthenticated, got %v", err)
	}
}

func TestLoginCancelled(t *testing.T) {
	t.Parallel()
	s, m, _ := newSession(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Login(ctx, model.ProviderGoogle)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected cancellation, got %v", err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("Expected unauthenticated, got %s", s.State())
	}
	if m.Has(store.IdentityKey(ns)) {
		t.Error("Expected no identity record after cancelled login")
	}
}

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, _ := newSession(t, 0)

	if _, ok := s.Restore(ctx); ok {
		t.Fatal("Expected restore to fail without a record")
	}

	id, _ := MockIdentity(model.ProviderGitHub)
	if err := store.SaveJSON(ctx, m, store.IdentityKey(ns), id); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
	got, ok := s.Restore(ctx)
	if !ok || got != id {
		t.Fatalf("Restore() = %+v, %v", got, ok)
	}
	if s.State() != Authenticated {
		t.Errorf("Expected authenticated after restore, got %s", s.State())
	}
}

func TestRestoreIgnoresInvalidRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, raw := range map[string]string{
		"corrupt":          `{"id":`,
		"missing id":       `{"email":"a@b.c","provider":"google"}`,
		"unknown provider": `{"id":"x","provider":"myspace"}`,
	} {
		t.Run(name, func(t *testing.T) {
			s, m, _ := newSession(t, 0)
			m.Put(store.IdentityKey(ns), []byte(raw))
			if _, ok := s.Restore(ctx); ok {
				t.Error("Expected invalid record to be ignored")
			}
			if s.State() != Unauthenticated {
				t.Errorf("Expected unauthenticated, got %s", s.State())
			}
		})
	}
}

func TestLogoutErasesRecordsAndRunsHooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, rec := newSession(t, 0)

	id, err := s.Login(ctx, model.ProviderGoogle)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	tasksKey, _ := s.TasksKey()
	if err := m.Save(ctx, tasksKey, json.RawMessage(`[]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var hooked model.Identity
	calls := 0
	s.OnLogout(func(prev model.Identity) {
		hooked = prev
		calls++
	})

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if s.State() != Unauthenticated {
		t.Errorf("Expected unauthenticated, got %s", s.State())
	}
	if hooked != id || calls != 1 {
		t.Errorf("Expected hook called once with %+v, got %d calls with %+v", id, calls, hooked)
	}
	if m.Has(store.IdentityKey(ns)) || m.Has(tasksKey) {
		t.Error("Expected identity and task records erased")
	}
	if n, _ := rec.Last(); n.Message != "Logged out successfully" {
		t.Errorf("Unexpected notification: %q", n.Message)
	}

	// Hooks belong to one signed-in lifetime.
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected hook not to run again, ran %d times", calls)
	}
}

func TestLogoutWithoutRestoreErasesSavedScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, _ := newSession(t, 0)

	id, _ := MockIdentity(model.ProviderGoogle)
	_ = store.SaveJSON(ctx, m, store.IdentityKey(ns), id)
	_ = m.Save(ctx, store.TasksKey(ns, id.ID), json.RawMessage(`[]`))

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if m.Has(store.TasksKey(ns, id.ID)) {
		t.Error("Expected saved task record erased")
	}
}

func TestLogoutDuringLoginAbortsLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, _ := newSession(t, 100*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, model.ProviderGoogle)
		done <- err
	}()
	for s.State() != Authenticating {
		time.Sleep(time.Millisecond)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrLoginFailed) {
		t.Errorf("Expected superseded login to fail, got %v", err)
	}
	if s.State() != Unauthenticated || m.Has(store.IdentityKey(ns)) {
		t.Error("Expected session to stay signed out")
	}
}

func TestLogoutReportsStorageFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m, _ := newSession(t, 0)
	if _, err := s.Login(ctx, model.ProviderGoogle); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	m.FailWrites(errors.New("locked"))
	if err := s.Logout(ctx); !store.IsStorageError(err) {
		t.Errorf("Expected storage error, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Expected in-memory identity cleared despite storage failure")
	}
}

func TestAuthURL(t *testing.T) {
	t.Parallel()
	url, err := AuthURL(model.ProviderGitHub, "state-1")
	if err != nil {
		t.Fatalf("AuthURL failed: %v", err)
	}
	if !strings.HasPrefix(url, "https://github.com/login/oauth/authorize?") {
		t.Errorf("Expected github authorize URL, got %s", url)
	}
	if _, err := AuthURL("nope", "s"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("Expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestAuthURLNamesProviderEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider model.Provider
		host     string
	}{
		{model.ProviderGoogle, "accounts.google.com"},
		{model.ProviderGitHub, "github.com"},
	}
	for _, tt := range tests {
		url, err := AuthURL(tt.provider, "state-1")
		if err != nil {
			t.Fatalf("AuthURL(%s) failed: %v", tt.provider, err)
		}
		if !strings.Contains(url, tt.host) || !strings.Contains(url, "state=state-1") {
			t.Errorf("Expected %s auth URL with state, got %q", tt.host, url)
		}
	}

	if _, err := AuthURL(model.Provider("gitlab"), "x"); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("Expected ErrUnsupportedProvider, got %v", err)
	}
}
