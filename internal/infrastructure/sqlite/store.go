package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncruces/go-sqlite3"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store.
type Store struct {
	db     *sql.DB
	format domain.CodeFormat
}

var _ domain.Store = (*Store)(nil)

// Update runs fn inside a BEGIN IMMEDIATE transaction. The transaction commits
// when fn returns nil and rolls back otherwise. ctx is only checked before
// BEGIN.
func (s *Store) Update(ctx context.Context, fn func(context.Context, domain.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	txCtx := context.WithoutCancel(ctx)

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	repos := repositories(tx)
	repos.Codes = &codeIssuer{q: tx, format: s.format}
	if err = fn(txCtx, repos); err != nil {
		return asConflict(err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// View runs fn against the connection pool without a transaction.
func (s *Store) View(ctx context.Context, fn func(context.Context, domain.Repositories) error) error {
	return fn(ctx, repositories(s.db))
}

func repositories(q Querier) domain.Repositories {
	return domain.Repositories{
		Parts:        &partRepository{q: q},
		Assemblies:   &assemblyRepository{q: q},
		ToolingLists: &toolingListRepository{q: q},
		Logs:         &operationLogRepository{q: q},
		Dictionary:   &dictionaryRepository{q: q},
	}
}

// asConflict tags SQLite constraint violations with domain.ErrConflict,
// keeping the driver error in the chain.
func asConflict(err error) error {
	if errors.Is(err, sqlite3.CONSTRAINT) && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}

// rowsAffected unwraps an Exec result.
func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
