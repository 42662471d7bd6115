package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/zjrosen/toolasset/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL
)`

// Migration is one embedded up migration, identified by its file stem.
type Migration struct {
	Version   string     `json:"version"`
	AppliedAt *time.Time `json:"applied_at"`
}

// Migrate applies every embedded migration whose stem is not yet in the
// schema_migrations ledger. Each migration runs in its own transaction
// together with its ledger row. It returns the stems it applied.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	if _, err := db.conn.ExecContext(ctx, createLedger); err != nil {
		return nil, fmt.Errorf("failed to create migration ledger: %w", err)
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	err = walkMigrations(func(stem, body string) error {
		if _, ok := done[stem]; ok {
			return nil
		}
		if err := db.applyMigration(ctx, stem, body); err != nil {
			return err
		}
		log.Debug(log.CatDB, "migration applied", "version", stem)
		applied = append(applied, stem)
		return nil
	})
	return applied, err
}

// MigrationStatus lists every embedded migration with its applied time, nil
// when pending.
func (db *DB) MigrationStatus(ctx context.Context) ([]Migration, error) {
	if _, err := db.conn.ExecContext(ctx, createLedger); err != nil {
		return nil, fmt.Errorf("failed to create migration ledger: %w", err)
	}
	done, err := db.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var out []Migration
	err = walkMigrations(func(stem, _ string) error {
		m := Migration{Version: stem}
		if at, ok := done[stem]; ok {
			m.AppliedAt = &at
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (db *DB) appliedVersions(ctx context.Context) (map[string]time.Time, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	done := make(map[string]time.Time)
	for rows.Next() {
		var version, appliedAt string
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration ledger: %w", err)
		}
		at, _ := time.Parse(time.RFC3339, appliedAt)
		done[version] = at
	}
	return done, rows.Err()
}

func (db *DB) applyMigration(ctx context.Context, stem, body string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", stem, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("migration %s failed: %w", stem, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		stem, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", stem, err)
	}
	return tx.Commit()
}

// walkMigrations visits the embedded up migrations in version order.
func walkMigrations(visit func(stem, body string) error) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	version, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read first migration: %w", err)
	}

	for {
		if err := visitUp(src, version, visit); err != nil {
			return err
		}
		version, err = src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read next migration: %w", err)
		}
	}
}

func visitUp(src source.Driver, version uint, visit func(stem, body string) error) error {
	r, identifier, err := src.ReadUp(version)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	return visit(fmt.Sprintf("%04d_%s", version, identifier), string(body))
}
