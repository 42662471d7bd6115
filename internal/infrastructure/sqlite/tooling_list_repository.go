package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

const toolingListColumns = `id, list_code, title, note, created_at, updated_at`

// toolingListRepository implements domain.ToolingListRepository.
type toolingListRepository struct {
	q Querier
}

var _ domain.ToolingListRepository = (*toolingListRepository)(nil)

func scanToolingList(s scanner) (*domain.ToolingList, error) {
	var (
		l                    domain.ToolingList
		createdAt, updatedAt int64
	)
	if err := s.Scan(&l.ID, &l.ListCode, &l.Title, &l.Note, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt = fromUnix(createdAt)
	l.UpdatedAt = fromUnix(updatedAt)
	return &l, nil
}

func (r *toolingListRepository) Insert(ctx context.Context, l *domain.ToolingList) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO tooling_lists (list_code, title, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		l.ListCode, l.Title, l.Note, toUnix(l.CreatedAt), toUnix(l.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tooling list: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	l.ID = id
	return nil
}

func (r *toolingListRepository) FindByCode(ctx context.Context, code string) (*domain.ToolingList, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+toolingListColumns+` FROM tooling_lists WHERE list_code = ?`, code)
	l, err := scanToolingList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.KindToolingList, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tooling list: %w", err)
	}
	return l, nil
}

func (r *toolingListRepository) IDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM tooling_lists WHERE list_code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFound(domain.KindToolingList, code)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve tooling list: %w", err)
	}
	return id, nil
}

// List matches q against code, title and note; most recently updated first.
func (r *toolingListRepository) List(ctx context.Context, filter domain.ToolingListFilter) ([]*domain.ToolingList, error) {
	query := `SELECT ` + toolingListColumns + ` FROM tooling_lists`
	var args []any
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := likePattern(q)
		query += ` WHERE list_code LIKE ? OR title LIKE ? OR IFNULL(note, '') LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY updated_at DESC, list_code DESC LIMIT ?`
	args = append(args, filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tooling lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ToolingList
	for rows.Next() {
		l, err := scanToolingList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tooling list row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update writes title and/or note. A blank note is stored as NULL.
func (r *toolingListRepository) Update(ctx context.Context, code string, u domain.ToolingListUpdate, now time.Time) (int64, error) {
	var (
		sets []string
		args []any
	)
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*u.Title))
	}
	if u.Note != nil {
		sets = append(sets, "note = NULLIF(TRIM(?), '')")
		args = append(args, *u.Note)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toUnix(now), code)

	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE tooling_lists SET `+strings.Join(sets, ", ")+` WHERE list_code = ?`, args...))
	if err != nil {
		return 0, fmt.Errorf("failed to update tooling list: %w", err)
	}
	return n, nil
}

func (r *toolingListRepository) Touch(ctx context.Context, listID int64, now time.Time) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE tooling_lists SET updated_at = ? WHERE id = ?`, toUnix(now), listID); err != nil {
		return fmt.Errorf("failed to touch tooling list: %w", err)
	}
	return nil
}

func (r *toolingListRepository) InsertItem(ctx context.Context, listID, assemblyID int64, toolNo string, qty float64, note *string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO tooling_list_items (tooling_list_id, assembly_id, tool_no, qty, note) VALUES (?, ?, ?, ?, ?)`,
		listID, assemblyID, toolNo, qty, domain.BlankToNil(note),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tooling list item: %w", err)
	}
	return res.LastInsertId()
}

// DeleteItem deletes an item only if it belongs to listID.
func (r *toolingListRepository) DeleteItem(ctx context.Context, listID, itemID int64) (int64, error) {
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`DELETE FROM tooling_list_items WHERE id = ? AND tooling_list_id = ?`, itemID, listID))
	if err != nil {
		return 0, fmt.Errorf("failed to delete tooling list item: %w", err)
	}
	return n, nil
}

func (r *toolingListRepository) DeleteAllItems(ctx context.Context, listID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tooling_list_items WHERE tooling_list_id = ?`, listID); err != nil {
		return fmt.Errorf("failed to clear tooling list items: %w", err)
	}
	return nil
}

// ListItems orders numeric tool numbers numerically; non-numeric ones cast
// to 0 and fall back to text order.
func (r *toolingListRepository) ListItems(ctx context.Context, listID int64, limit int) ([]*domain.ToolingListItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT tli.id, tli.tool_no, tli.qty, tli.note,
			a.assembly_code, a.display_name, a.tool_diameter, a.tool_overall_length, a.note, a.updated_at
		 FROM tooling_list_items tli
		 JOIN assemblies a ON a.id = tli.assembly_id
		 WHERE tli.tooling_list_id = ?
		 ORDER BY CAST(tli.tool_no AS INTEGER), tli.tool_no, a.assembly_code, tli.id
		 LIMIT ?`,
		listID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tooling list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ToolingListItem
	for rows.Next() {
		var (
			it        domain.ToolingListItem
			updatedAt int64
		)
		if err := rows.Scan(
			&it.ItemID, &it.ToolNo, &it.Qty, &it.ItemNote,
			&it.AssemblyCode, &it.AssemblyName, &it.ToolDiameter, &it.ToolOverallLength, &it.AssemblyNote, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tooling list item: %w", err)
		}
		it.AssemblyUpdatedAt = fromUnix(updatedAt)
		out = append(out, &it)
	}
	return out, rows.Err()
}
