package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLSlot {
	t.Helper()
	slot, err := OpenSQL(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { slot.Close() })
	return slot
}

func TestSQLSlot_ReadWrite(t *testing.T) {
	ctx := context.Background()
	slot := openTestSQLite(t)

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, slot.Write(ctx, []byte(`["first"]`)))
	require.NoError(t, slot.Write(ctx, []byte(`["second"]`)))

	data, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["second"]`, string(data))
}

func TestSQLSlot_WithStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(openTestSQLite(t), nil)

	_, err := s.Save(ctx, "first", sampleTasks())
	require.NoError(t, err)
	_, err = s.Save(ctx, "second", sampleTasks())
	require.NoError(t, err)

	plans, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "second", plans[0].Goal)
	assert.Equal(t, "first", plans[1].Goal)
}

func TestSQLSlot_Update(t *testing.T) {
	ctx := context.Background()
	slot := openTestSQLite(t)

	t.Run("missing row reads as nil", func(t *testing.T) {
		err := slot.Update(ctx, func(current []byte) ([]byte, error) {
			assert.Nil(t, current)
			return []byte(`["first"]`), nil
		})
		require.NoError(t, err)
	})

	t.Run("error from fn rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := slot.Update(ctx, func(current []byte) ([]byte, error) {
			assert.Equal(t, `["first"]`, string(current))
			return []byte(`["lost"]`), boom
		})
		require.ErrorIs(t, err, boom)

		data, err := slot.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, `["first"]`, string(data))
	})

	t.Run("save refuses unreadable content", func(t *testing.T) {
		require.NoError(t, slot.Write(ctx, []byte("{broken")))
		_, err := newTestStore(slot, &bytes.Buffer{}).Save(ctx, "new", sampleTasks())
		require.ErrorIs(t, err, errCorrupt)

		data, err := slot.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, "{broken", string(data))
	})
}

func TestLockingSelect(t *testing.T) {
	assert.NotContains(t, (&SQLSlot{dialect: DialectSQLite}).lockingSelect(), "FOR UPDATE")
	assert.Contains(t, (&SQLSlot{dialect: DialectMySQL}).lockingSelect(), "FOR UPDATE")
}

func TestOpenSQL_UnsupportedDialect(t *testing.T) {
	_, err := OpenSQL(context.Background(), Dialect("postgres"), "")
	assert.ErrorContains(t, err, "unsupported storage dialect")
}

func TestUpsertQuery(t *testing.T) {
	sqlite := &SQLSlot{dialect: DialectSQLite}
	assert.Contains(t, sqlite.upsertQuery(), "ON CONFLICT(slot_key)")

	my := &SQLSlot{dialect: DialectMySQL}
	assert.Contains(t, my.upsertQuery(), "ON DUPLICATE KEY UPDATE")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"bad connection", fmt.Errorf("exec: %w", errors.New("driver: bad connection")), true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"mysql lock wait", fmt.Errorf("write: %w", &mysql.MySQLError{Number: 1205}), true},
		{"mysql syntax", &mysql.MySQLError{Number: 1064}, false},
		{"other", errors.New("no such table"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	slot, closeFn, err := Open(ctx, BackendFile, filepath.Join(dir, "plans.json"), "")
	require.NoError(t, err)
	assert.IsType(t, &FileSlot{}, slot)
	assert.NoError(t, closeFn())

	slot, closeFn, err = Open(ctx, BackendSQLite, filepath.Join(dir, "plans.json"), "")
	require.NoError(t, err)
	assert.IsType(t, &SQLSlot{}, slot)
	assert.NoError(t, closeFn())
	assert.FileExists(t, filepath.Join(dir, "plans.db"))

	_, _, err = Open(ctx, BackendMySQL, "", "")
	assert.ErrorContains(t, err, "dsn is required")

	_, _, err = Open(ctx, "redis", "", "")
	assert.ErrorContains(t, err, "unknown storage backend")
}
