package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// setupTestStore creates a migrated DB and returns its store.
// The DB is closed when the test completes.
func setupTestStore(t testing.TB) (*DB, *Store) {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db, db.Store(domain.DefaultCodeFormat())
}

func issue(t testing.TB, s *Store, ns string) string {
	t.Helper()
	var code string
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		var err error
		code, err = r.Codes.Issue(ctx, ns)
		return err
	})
	require.NoError(t, err)
	return code
}

func TestIssueCode_Monotonic(t *testing.T) {
	_, s := setupTestStore(t)

	require.Equal(t, "INSERT_00000001", issue(t, s, "INSERT"))
	require.Equal(t, "INSERT_00000002", issue(t, s, "INSERT"))
	require.Equal(t, "HOLDER_00000001", issue(t, s, "HOLDER"), "namespaces are independent")
	require.Equal(t, "ASM_00000001", issue(t, s, domain.NamespaceAssembly))
	require.Equal(t, "TL_00000001", issue(t, s, domain.NamespaceToolingList))
}

func TestIssueCode_UnknownNamespace(t *testing.T) {
	db, _ := setupTestStore(t)

	_, err := IssueCode(context.Background(), db.conn, "SPINDLE", domain.DefaultCodeFormat())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueCode_CustomFormat(t *testing.T) {
	db, _ := setupTestStore(t)

	code, err := IssueCode(context.Background(), db.conn, "SCREW", domain.CodeFormat{Width: 4, Separator: "-"})
	require.NoError(t, err)
	require.Equal(t, "SCREW-0001", code)
}

func TestIssueCode_RolledBackNumbersAreSkipped(t *testing.T) {
	_, s := setupTestStore(t)

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		code, err := r.Codes.Issue(ctx, "INSERT")
		require.NoError(t, err)
		require.Equal(t, "INSERT_00000001", code)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The increment shares the caller's transaction, so nothing was committed
	// under the first number.
	require.Equal(t, "INSERT_00000001", issue(t, s, "INSERT"))
}

func TestIssueCode_ConcurrentIssuersNeverCollide(t *testing.T) {
	db1, s1 := setupTestStore(t)
	db2, err := NewDB(db1.Path())
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })
	s2 := db2.Store(domain.DefaultCodeFormat())

	const perWorker = 10
	var (
		mu    sync.Mutex
		codes = map[string]int{}
		wg    sync.WaitGroup
	)
	for _, s := range []*Store{s1, s2, s1, s2} {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				var code string
				err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
					var err error
					code, err = r.Codes.Issue(ctx, "SOLID_TOOL")
					return err
				})
				if err != nil {
					t.Errorf("issue failed: %v", err)
					return
				}
				mu.Lock()
				codes[code]++
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	require.Len(t, codes, 4*perWorker)
	for code, n := range codes {
		require.Equal(t, 1, n, "code %s issued twice", code)
	}
}

// Issued numbers are strictly increasing within a namespace.
func TestIssueCode_Property(t *testing.T) {
	_, s := setupTestStore(t)
	last := map[string]string{}

	rapid.Check(t, func(r *rapid.T) {
		ns := rapid.SampledFrom([]string{"HOLDER", "INSERT", "SCREW", "ASM"}).Draw(r, "ns")
		code := issue(t, s, ns)
		if prev, ok := last[ns]; ok {
			require.Greater(r, code, prev)
		}
		require.Regexp(r, fmt.Sprintf(`^%s_\d{8}$`, ns), code)
		last[ns] = code
	})
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	db, s := setupTestStore(t)

	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		now := time.Now()
		if err := r.ToolingLists.Insert(ctx, &domain.ToolingList{ListCode: "TL_X", Title: "x", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return domain.Invalid("title", "nope")
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	var n int
	require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM tooling_lists`).Scan(&n))
	require.Zero(t, n)
}

func TestStore_UpdateRejectsCanceledContext(t *testing.T) {
	_, s := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Update(ctx, func(context.Context, domain.Repositories) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestStore_ConstraintViolationIsConflict(t *testing.T) {
	_, s := setupTestStore(t)

	insert := func() error {
		return s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
			now := time.Now()
			return r.ToolingLists.Insert(ctx, &domain.ToolingList{ListCode: "TL_DUP", Title: "x", CreatedAt: now, UpdatedAt: now})
		})
	}
	require.NoError(t, insert())
	err := insert()
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_ViewHasNoIssuer(t *testing.T) {
	_, s := setupTestStore(t)

	err := s.View(context.Background(), func(_ context.Context, r domain.Repositories) error {
		require.Nil(t, r.Codes)
		require.NotNil(t, r.Parts)
		return nil
	})
	require.NoError(t, err)
}
