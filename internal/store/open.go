package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Open returns the slot for backend along with a function that releases it.
// path is the data file for the file backend; the SQLite backend uses dsn,
// falling back to plans.db next to path. MySQL requires dsn.
func Open(ctx context.Context, backend, path, dsn string) (Slot, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(backend) {
	case "", BackendFile:
		if path == "" {
			return nil, noop, fmt.Errorf("storage path is required for the file backend")
		}
		return NewFileSlot(path), noop, nil
	case BackendSQLite:
		if dsn == "" {
			if path == "" {
				return nil, noop, fmt.Errorf("storage dsn or path is required for sqlite")
			}
			dsn = filepath.Join(filepath.Dir(path), "plans.db")
		}
		slot, err := OpenSQL(ctx, DialectSQLite, dsn)
		if err != nil {
			return nil, noop, err
		}
		return slot, slot.Close, nil
	case BackendMySQL:
		if dsn == "" {
			return nil, noop, fmt.Errorf("storage dsn is required for mysql")
		}
		slot, err := OpenSQL(ctx, DialectMySQL, dsn)
		if err != nil {
			return nil, noop, err
		}
		return slot, slot.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", backend)
	}
}
