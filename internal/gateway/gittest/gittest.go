// Package gittest provides helpers for tests that need a real git repository.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// InitRepo creates an empty repository in a temp dir and returns its path.
// The test is skipped when git is not installed.
func InitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	dir := t.TempDir()
	Run(t, dir, "init", "--quiet")
	Run(t, dir, "config", "user.email", "bench@example.com")
	Run(t, dir, "config", "user.name", "bench")
	Run(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

// CommitFile writes name with content, commits it and returns the new HEAD sha.
func CommitFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	Run(t, dir, "add", name)
	Run(t, dir, "commit", "--quiet", "-m", "add "+name)
	return Run(t, dir, "rev-parse", "HEAD")
}

// Run executes git in dir and returns its trimmed output, failing the test on error.
func Run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %s: %v", strings.Join(args, " "), out, err)
	}
	return strings.TrimSpace(string(out))
}
