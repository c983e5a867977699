package database

import (
	"context"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/taskapproval/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenSQLite(context.Background(), SQLiteDSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrate_CreatesTables(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	assert.Equal(t, dialect.SQLite, db.Dialect)

	require.NoError(t, db.Migrate(ctx))

	var names []string
	require.NoError(t, db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'tasks') ORDER BY name"))
	assert.Equal(t, []string{"tasks", "users"}, names)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.Ping(ctx))
}

func TestMigrate_TaskSequenceIncrements(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.Migrate(ctx))

	insert := `INSERT INTO tasks (id, title, status, priority, assigned_user_id, created_by, created_date, scheduled_date, version)
		VALUES (?, 't', 'PENDING', 'LOW', ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 1)`
	_, err := db.ExecContext(ctx, insert, "00000000-0000-0000-0000-000000000001", "u", "u")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "00000000-0000-0000-0000-000000000002", "u", "u")
	require.NoError(t, err)

	var seqs []int64
	require.NoError(t, db.SelectContext(ctx, &seqs, "SELECT seq FROM tasks ORDER BY seq"))
	assert.Equal(t, []int64{1, 2}, seqs)

	_, err = db.ExecContext(ctx, insert, "00000000-0000-0000-0000-000000000001", "u", "u")
	assert.Error(t, err, "duplicate task id must violate the unique constraint")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no sql backend")
}
