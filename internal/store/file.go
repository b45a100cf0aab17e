package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultLockWait bounds how long a write waits for another writer.
const DefaultLockWait = 5 * time.Second

// FileSlot stores the slot content in a single JSON file.
type FileSlot struct {
	path     string
	lockWait time.Duration
}

// NewFileSlot returns a slot backed by the file at path. Parent directories
// are created on first write.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path, lockWait: DefaultLockWait}
}

// Path returns the file location.
func (s *FileSlot) Path() string {
	return s.path
}

// Read returns the file content, or nil when the file does not exist.
func (s *FileSlot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}

// Write replaces the file using a temp file and rename while holding the
// lock file next to it.
func (s *FileSlot) Write(ctx context.Context, data []byte) error {
	return s.locked(ctx, func() error {
		return s.replace(data)
	})
}

// Update holds the lock file across reading the file, calling fn and
// replacing the file with its result.
func (s *FileSlot) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	return s.locked(ctx, func() error {
		current, err := s.Read(ctx)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return s.replace(next)
	})
}

func (s *FileSlot) locked(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	lock := NewFileLock(s.path + ".lock")
	if err := s.acquire(ctx, lock); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}

func (s *FileSlot) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *FileSlot) acquire(ctx context.Context, lock *FileLock) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = s.lockWait

	return backoff.Retry(func() error {
		err := lock.Acquire()
		if err != nil && !errors.Is(err, ErrLocked) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
