package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned by Acquire when a live process holds the lock.
var ErrLocked = errors.New("plan file is locked")

// FileLock is a PID lock file guarding writes to a plan file.
type FileLock struct {
	path string
}

// NewFileLock returns a lock stored at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Acquire takes the lock. Locks left by dead processes are removed and
// taken over; a lock held by a live process returns ErrLocked.
func (l *FileLock) Acquire() error {
	err := l.create()
	if err == nil || !os.IsExist(err) {
		return err
	}

	pid, ok, err := l.owner()
	switch {
	case os.IsNotExist(err):
		// Released since create; nothing stale to remove.
	case err != nil:
		return err
	case ok && processExists(pid):
		return fmt.Errorf("%w (PID %d)", ErrLocked, pid)
	default:
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}

	// One retry only; a racing process that wins is reported as the holder.
	if err := l.create(); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w (taken during retry)", ErrLocked)
		}
		return err
	}
	return nil
}

// Release removes the lock file. Releasing an absent lock is not an error.
func (l *FileLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live process holds the lock.
func (l *FileLock) IsLocked() (bool, error) {
	pid, ok, err := l.owner()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return ok && processExists(pid), nil
}

// create writes the PID to a temp file and links it into place, so the lock
// file never exists without its content.
func (l *FileLock) create() error {
	f, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to write lock file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write lock file: %w", closeErr)
	}

	if err := os.Link(tmpPath, l.path); err != nil {
		if os.IsExist(err) {
			return err
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	return nil
}

// owner reads the PID in the lock file. ok is false when the content is not
// a PID.
func (l *FileLock) owner() (pid int, ok bool, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, err
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}
	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		return 0, false, nil
	}
	return pid, true, nil
}

// processExists uses signal 0 to probe for a live process.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
