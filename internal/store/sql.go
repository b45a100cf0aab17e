package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
)

// Dialect selects the SQL driver and upsert syntax.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

const slotTable = "goalplan_slots"

const sqlRetryMaxElapsed = 10 * time.Second

// SQLSlot stores the slot content as one row of a key/value table.
type SQLSlot struct {
	db      *sql.DB
	dialect Dialect
	key     string
}

// OpenSQL opens dsn with the driver for dialect and creates the slot table
// if needed. For SQLite the dsn is a file path.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLSlot, error) {
	switch dialect {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported storage dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	slot := &SQLSlot{db: db, dialect: dialect, key: SlotKey}
	if err := slot.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return slot, nil
}

func (s *SQLSlot) migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + slotTable + ` (
		slot_key VARCHAR(191) NOT NULL PRIMARY KEY,
		slot_value LONGTEXT NOT NULL
	)`
	return s.withRetry(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", slotTable, err)
		}
		return nil
	})
}

// Read returns the stored value, or nil when the row does not exist.
func (s *SQLSlot) Read(ctx context.Context) ([]byte, error) {
	var value string
	err := s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT slot_value FROM `+slotTable+` WHERE slot_key = ?`, s.key,
		).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Write inserts or replaces the stored value.
func (s *SQLSlot) Write(ctx context.Context, data []byte) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, s.upsertQuery(), s.key, string(data))
		return err
	})
}

// Update runs the read, fn and the write in one transaction. The row is
// locked before it is read: MySQL takes a row lock with SELECT ... FOR
// UPDATE and SQLite starts the write transaction with a no-op UPDATE. fn may
// run again when the transaction is retried.
func (s *SQLSlot) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if s.dialect == DialectSQLite {
			if _, err := tx.ExecContext(ctx,
				`UPDATE `+slotTable+` SET slot_value = slot_value WHERE slot_key = ?`, s.key,
			); err != nil {
				return err
			}
		}

		var current []byte
		var value string
		err = tx.QueryRowContext(ctx, s.lockingSelect(), s.key).Scan(&value)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			current = []byte(value)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.upsertQuery(), s.key, string(next)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Close closes the database.
func (s *SQLSlot) Close() error {
	return s.db.Close()
}

func (s *SQLSlot) upsertQuery() string {
	insert := `INSERT INTO ` + slotTable + ` (slot_key, slot_value) VALUES (?, ?) `
	if s.dialect == DialectMySQL {
		return insert + `ON DUPLICATE KEY UPDATE slot_value = VALUES(slot_value)`
	}
	return insert + `ON CONFLICT(slot_key) DO UPDATE SET slot_value = excluded.slot_value`
}

func (s *SQLSlot) lockingSelect() string {
	query := `SELECT slot_value FROM ` + slotTable + ` WHERE slot_key = ?`
	if s.dialect == DialectMySQL {
		return query + ` FOR UPDATE`
	}
	return query
}

func (s *SQLSlot) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = sqlRetryMaxElapsed
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// isTransient reports whether err comes from lock contention or a dropped
// connection.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1205 lock wait timeout, 1213 deadlock
		return myErr.Number == 1205 || myErr.Number == 1213
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"database is locked", "sqlite_busy", "driver: bad connection", "invalid connection", "connection reset"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
