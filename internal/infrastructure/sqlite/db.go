// Package sqlite implements the inventory repositories on SQLite using the
// pure-Go ncruces driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // registers the "sqlite3" driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the SQLite wasm binary

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
)

// DB owns the database connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// dsn builds the connection string. Transactions begin IMMEDIATE so a writer
// takes the reserved lock before its first read.
func dsn(path string) string {
	return "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(wal)"
}

// NewDB opens (creating if needed) the database at path, backs up an
// existing file to path+".bak", and applies pending migrations.
func NewDB(path string) (*DB, error) {
	return Open(context.Background(), path, true)
}

// Open opens the database at path. When migrate is false pending migrations
// are left alone, which `db status` uses to report them.
func Open(ctx context.Context, path string, migrate bool) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if migrate {
		if err := Backup(ctx, path); err != nil {
			return nil, fmt.Errorf("failed to back up database: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if migrate {
		applied, err := db.Migrate(ctx)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		if len(applied) > 0 {
			log.Info(log.CatDB, "applied migrations", "path", path, "count", len(applied))
		}
	}
	return db, nil
}

// Backup writes a consistent copy of an existing non-empty database to
// path+".bak". VACUUM INTO reads through SQLite, so pages still in the WAL
// are included.
func Backup(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		return nil
	}
	if err != nil {
		return err
	}

	dest := path + ".bak"
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return os.Chmod(dest, 0o600)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Store returns a domain.Store that issues codes in the given format.
func (db *DB) Store(format domain.CodeFormat) *Store {
	return &Store{db: db.conn, format: format}
}
