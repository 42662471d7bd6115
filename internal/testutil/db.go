// Package testutil provides test utilities for database setup.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/toolasset/internal/catalog"
	"github.com/zjrosen/toolasset/internal/infrastructure/sqlite"
	"github.com/zjrosen/toolasset/internal/inventory/application"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// Actor is recorded on audit entries written through NewServices.
const Actor = "tester"

// NewTestDB opens a migrated database in a temp directory. It is closed
// when the test ends.
func NewTestDB(t testing.TB) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "toolasset.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Env bundles a database with the services built on it.
type Env struct {
	DB       *sqlite.DB
	Store    *sqlite.Store
	Services *application.Services
	Clock    *Clock
}

// NewServices opens a test database and wires the services with the
// default dictionary, the default code format and a manual clock.
func NewServices(t testing.TB) *Env {
	t.Helper()
	db := NewTestDB(t)
	store := db.Store(domain.DefaultCodeFormat())
	clock := NewClock()
	svc := application.New(store, catalog.Default(), application.Options{
		Actor: Actor,
		Now:   clock.Now,
	})
	return &Env{DB: db, Store: store, Services: svc, Clock: clock}
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sqlite.DB, table string) int {
	t.Helper()
	var n int
	err := db.Connection().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}
