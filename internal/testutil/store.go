package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/tasknest/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return openStore(t, ":memory:")
}

// NewFileStore creates a SQLiteStore backed by a file in a temp directory.
func NewFileStore(t *testing.T) (*store.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasknest.db")
	return openStore(t, path), path
}

func openStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// PutRawRow writes value into the kv table of the database at path without
// any validation, the way an older or foreign writer could have left it.
func PutRawRow(t *testing.T, path, key, value string) {
	t.Helper()

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer db.Close()

	if _, err := db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("writing raw row %s: %v", key, err)
	}
}
