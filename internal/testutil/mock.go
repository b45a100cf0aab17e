// Package testutil provides testing utilities for goalplan.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// CommandFunc has the signature of exec.CommandContext.
type CommandFunc = func(ctx context.Context, name string, args ...string) *exec.Cmd

// MockCommandFunc creates a mock command that writes output to stdout.
// Usage: ai.CommandContext = testutil.MockCommandFunc(jsonResponse)
func MockCommandFunc(output string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "echo", "-n", output)
	}
}

// MockFailingCommandFunc creates a mock command that writes stderr and exits 1.
func MockFailingCommandFunc(stderr string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", `printf '%s' "$1" >&2; exit 1`, "sh", stderr)
	}
}

// CommandRecorder wraps a CommandFunc and remembers the last invocation.
type CommandRecorder struct {
	mu   sync.Mutex
	next CommandFunc
	name string
	args []string
}

// RecordCommands returns a recorder delegating to next.
func RecordCommands(next CommandFunc) *CommandRecorder {
	return &CommandRecorder{next: next}
}

// Func returns the recording CommandFunc.
func (r *CommandRecorder) Func() CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		r.mu.Lock()
		r.name = name
		r.args = append([]string(nil), args...)
		r.mu.Unlock()
		return r.next(ctx, name, args...)
	}
}

// Last returns the most recent command name and arguments.
func (r *CommandRecorder) Last() (string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.args
}

// SetupTestDir creates a temp directory, resolves symlinks (for macOS),
// changes to it, and registers cleanup to restore the original working directory.
// Returns the resolved temp directory path.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}

	t.Cleanup(func() {
		os.Chdir(originalWd)
	})

	return tmpDir
}
