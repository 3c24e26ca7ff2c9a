package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig creates a config file keeping everything under dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`storage:
  backend: sqlite
  path: %s
  namespace: clitest
session:
  identity_backend: store
  login_delay_ms: 0
tasks:
  page_size: 5
  seed_demo: true
filter:
  week_start: sunday
log:
  level: debug
  file: %s
`, filepath.Join(dir, "tasks.db"), filepath.Join(dir, "tasknest.log"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, cfg string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config", cfg))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommandsRequireSignIn(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	if _, _, err := run(t, cfg, "whoami"); err != errNotSignedIn {
		t.Fatalf("Expected errNotSignedIn, got %v", err)
	}
}

func TestLoginAddListRemove(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, _, err := run(t, cfg, "login", "github")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(out, "user@github.com") {
		t.Errorf("Expected login output to name the account, got %q", out)
	}

	out, _, err = run(t, cfg, "whoami")
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if !strings.Contains(out, "provider: github") {
		t.Errorf("Expected whoami to show provider, got %q", out)
	}

	out, stderr, err := run(t, cfg, "add", "Water the plants", "--priority", "high", "--tags", "home")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("Expected add to print the new task id")
	}
	if !strings.Contains(stderr, "Task created successfully!") {
		t.Errorf("Expected success notification on stderr, got %q", stderr)
	}

	out, _, err = run(t, cfg, "list", "--search", "plants")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Water the plants") || !strings.Contains(out, "page 1/1 · 1 tasks") {
		t.Errorf("Expected the new task alone in the listing, got %q", out)
	}

	if _, _, err := run(t, cfg, "rm", id); err != nil {
		t.Fatalf("rm failed: %v", err)
	}

	if _, _, err := run(t, cfg, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, _, err := run(t, cfg, "whoami"); err != errNotSignedIn {
		t.Errorf("Expected errNotSignedIn after logout, got %v", err)
	}
}

func TestRecordsFollowSignIn(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())

	out, _, err := run(t, cfg, "records")
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if !strings.Contains(out, "No records stored.") {
		t.Errorf("Expected an empty listing before login, got %q", out)
	}

	if _, _, err := run(t, cfg, "login", "google"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out, _, err = run(t, cfg, "records")
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if !strings.Contains(out, "clitest/identity") || !strings.Contains(out, "/tasks") {
		t.Errorf("Expected identity and task records, got %q", out)
	}

	if _, _, err := run(t, cfg, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	out, _, _ = run(t, cfg, "records")
	if !strings.Contains(out, "No records stored.") {
		t.Errorf("Expected logout to erase every record, got %q", out)
	}
}
