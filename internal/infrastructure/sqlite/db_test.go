package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewDB_CreatesDirectory verifies that NewDB creates the parent directory if missing.
func TestNewDB_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err, "Directory should exist after NewDB")
	require.True(t, info.IsDir(), "Should be a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm(), "Directory should have 0700 permissions")
	}
}

// TestNewDB_RunsMigrations verifies that every table exists after NewDB.
func TestNewDB_RunsMigrations(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{
		"layers", "categories", "statuses", "id_sequences", "parts", "assemblies",
		"assembly_items", "tooling_lists", "tooling_list_items", "operation_logs", "schema_migrations",
	} {
		var name string
		err := db.conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "%s table should exist after migrations", table)
	}
}

// TestNewDB_SeedsSequences verifies every namespace starts at 1.
func TestNewDB_SeedsSequences(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.conn.Query(`SELECT layer_code, next_no FROM id_sequences`)
	require.NoError(t, err)
	defer rows.Close()

	seen := map[string]int{}
	for rows.Next() {
		var ns string
		var next int
		require.NoError(t, rows.Scan(&ns, &next))
		seen[ns] = next
	}
	require.NoError(t, rows.Err())
	require.Len(t, seen, 9)
	for _, ns := range []string{"HOLDER", "TOOL_BODY", "INSERT", "SOLID_TOOL", "SUB_HOLDER", "SCREW", "ACCESSORY", "ASM", "TL"} {
		require.Equal(t, 1, seen[ns], ns)
	}
}

// TestMigrate_IdempotentByStem verifies a second run applies nothing.
func TestMigrate_IdempotentByStem(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	require.Empty(t, applied)

	status, err := db.MigrationStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 2)
	require.Equal(t, "0001_init", status[0].Version)
	require.Equal(t, "0002_seed_dictionary", status[1].Version)
	for _, m := range status {
		require.NotNil(t, m.AppliedAt, m.Version)
	}
}

// TestOpen_WithoutMigrateReportsPending verifies db status on a fresh file.
func TestOpen_WithoutMigrateReportsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")
	db, err := Open(context.Background(), path, false)
	require.NoError(t, err)
	defer db.Close()

	status, err := db.MigrationStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 2)
	require.Nil(t, status[0].AppliedAt)

	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"0001_init", "0002_seed_dictionary"}, applied)
}

// TestNewDB_PreMigrationBackup verifies that a .bak file is created when an
// existing database file is reopened.
func TestNewDB_PreMigrationBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err, "First NewDB should succeed")
	_, err = db1.conn.Exec(`INSERT INTO statuses (code, label) VALUES ('X', 'x')`)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "Second NewDB should succeed")
	defer db2.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err, "Backup file should exist after second NewDB")
	require.Greater(t, info.Size(), int64(0), "Backup file should have content")
}

// TestBackup_IncludesWALPages verifies that rows committed but not yet
// checkpointed into the main file are present in the backup.
func TestBackup_IncludesWALPages(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO statuses (code, label) VALUES ('WAL_ONLY', 'pending checkpoint')`)
	require.NoError(t, err)

	walInfo, err := os.Stat(dbPath + "-wal")
	require.NoError(t, err, "write should still sit in the WAL while the database is open")
	require.Greater(t, walInfo.Size(), int64(0))

	require.NoError(t, Backup(ctx, dbPath))
	require.NoError(t, Backup(ctx, dbPath), "an existing backup is replaced")

	bak, err := sql.Open("sqlite3", "file:"+dbPath+".bak?mode=ro")
	require.NoError(t, err)
	defer bak.Close()

	var label string
	require.NoError(t, bak.QueryRowContext(ctx, `SELECT label FROM statuses WHERE code = 'WAL_ONLY'`).Scan(&label))
	require.Equal(t, "pending checkpoint", label)
}

func TestBackup_SkipsMissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	require.NoError(t, Backup(context.Background(), dbPath))

	_, err := os.Stat(dbPath + ".bak")
	require.True(t, os.IsNotExist(err))
}

// TestNewDB_Pragmas verifies WAL, foreign keys and busy timeout.
func TestNewDB_Pragmas(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	var busyTimeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.Equal(t, 5000, busyTimeout)
}

// TestDB_Close verifies that connection closes cleanly.
func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.Error(t, db.conn.Ping(), "Ping should fail after Close")
}

// TestDB_Connection verifies that Connection returns the underlying *sql.DB.
func TestDB_Connection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	conn := db.Connection()
	require.IsType(t, (*sql.DB)(nil), conn)
	require.NoError(t, conn.Ping())
}

// TestNewDB_InvalidPath verifies that NewDB returns an error for invalid paths.
func TestNewDB_InvalidPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix-specific restricted path test")
	}

	_, err := NewDB("/proc/toolasset-test/tool_asset.db")
	require.Error(t, err, "NewDB should fail for path in restricted directory")
}

func TestOperationLogs_AppendOnly(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.conn.Exec(`INSERT INTO operation_logs (action, target_type, target_code, actor, created_at)
		VALUES ('PART_ADD', 'PART', 'INSERT_00000001', 'tester', 1)`)
	require.NoError(t, err)

	_, err = db.conn.Exec(`UPDATE operation_logs SET actor = 'someone else'`)
	require.ErrorContains(t, err, "append-only")

	_, err = db.conn.Exec(`DELETE FROM operation_logs`)
	require.ErrorContains(t, err, "append-only")
}
