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

const assemblyColumns = `id, assembly_code, display_name, tool_overall_length, tool_diameter, note, created_at, updated_at`

// assemblyRepository implements domain.AssemblyRepository.
type assemblyRepository struct {
	q Querier
}

var _ domain.AssemblyRepository = (*assemblyRepository)(nil)

func scanAssembly(s scanner) (*domain.Assembly, error) {
	var (
		a                    domain.Assembly
		createdAt, updatedAt int64
	)
	err := s.Scan(&a.ID, &a.AssemblyCode, &a.DisplayName, &a.ToolOverallLength, &a.ToolDiameter, &a.Note, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)
	return &a, nil
}

func (r *assemblyRepository) Insert(ctx context.Context, a *domain.Assembly) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO assemblies (assembly_code, display_name, tool_overall_length, tool_diameter, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AssemblyCode, a.DisplayName, a.ToolOverallLength, a.ToolDiameter, a.Note, toUnix(a.CreatedAt), toUnix(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assembly: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *assemblyRepository) FindByCode(ctx context.Context, code string) (*domain.Assembly, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+assemblyColumns+` FROM assemblies WHERE assembly_code = ?`, code)
	a, err := scanAssembly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.KindAssembly, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assembly: %w", err)
	}
	return a, nil
}

func (r *assemblyRepository) IDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM assemblies WHERE assembly_code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFound(domain.KindAssembly, code)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve assembly: %w", err)
	}
	return id, nil
}

// List matches q against code, display name and note, ordered by code.
func (r *assemblyRepository) List(ctx context.Context, filter domain.AssemblyFilter) ([]*domain.Assembly, error) {
	query := `SELECT ` + assemblyColumns + ` FROM assemblies`
	var args []any
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := likePattern(q)
		query += ` WHERE assembly_code LIKE ? OR display_name LIKE ? OR IFNULL(note, '') LIKE ?`
		args = append(args, like, like, like)
	}
	query += ` ORDER BY assembly_code LIMIT ?`
	args = append(args, filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assemblies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Assembly
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assembly row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update writes the non-nil fields of u. It returns the rows affected.
func (r *assemblyRepository) Update(ctx context.Context, code string, u domain.AssemblyUpdate, now time.Time) (int64, error) {
	var (
		sets []string
		args []any
	)
	if u.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, strings.TrimSpace(*u.DisplayName))
	}
	if u.ToolOverallLength != nil {
		sets = append(sets, "tool_overall_length = ?")
		args = append(args, *u.ToolOverallLength)
	}
	if u.ToolDiameter != nil {
		sets = append(sets, "tool_diameter = ?")
		args = append(args, *u.ToolDiameter)
	}
	if u.Note != nil {
		sets = append(sets, "note = NULLIF(TRIM(?), '')")
		args = append(args, *u.Note)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toUnix(now), code)

	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE assemblies SET `+strings.Join(sets, ", ")+` WHERE assembly_code = ?`, args...))
	if err != nil {
		return 0, fmt.Errorf("failed to update assembly: %w", err)
	}
	return n, nil
}

func (r *assemblyRepository) InsertItem(ctx context.Context, assemblyID, partID int64, in domain.AssemblyItemInput) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO assembly_items (assembly_id, part_id, qty, role, note) VALUES (?, ?, ?, ?, ?)`,
		assemblyID, partID, in.Qty, domain.BlankToNil(in.Role), domain.BlankToNil(in.Note),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert assembly item: %w", err)
	}
	return res.LastInsertId()
}

// DeleteItem deletes an item only if it belongs to assemblyID.
func (r *assemblyRepository) DeleteItem(ctx context.Context, assemblyID, itemID int64) (int64, error) {
	n, err := rowsAffected(r.q.ExecContext(ctx,
		`DELETE FROM assembly_items WHERE id = ? AND assembly_id = ?`, itemID, assemblyID))
	if err != nil {
		return 0, fmt.Errorf("failed to delete assembly item: %w", err)
	}
	return n, nil
}

// ListItems returns the items of an assembly joined with their parts, in item
// id order.
func (r *assemblyRepository) ListItems(ctx context.Context, assemblyID int64, limit int) ([]*domain.AssemblyItem, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT ai.id, ai.qty, ai.role, ai.note,
			p.asset_code, p.layer_code, p.category_code, p.category_free_text, p.status,
			p.maker, p.part_no, p.maker_part_name, p.display_name, p.stock_qty, p.stock_unit
		 FROM assembly_items ai
		 JOIN parts p ON p.id = ai.part_id
		 WHERE ai.assembly_id = ?
		 ORDER BY ai.id
		 LIMIT ?`,
		assemblyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assembly items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.AssemblyItem
	for rows.Next() {
		var (
			it     domain.AssemblyItem
			status string
		)
		if err := rows.Scan(
			&it.ItemID, &it.Qty, &it.Role, &it.ItemNote,
			&it.AssetCode, &it.LayerCode, &it.CategoryCode, &it.CategoryFreeText, &status,
			&it.Maker, &it.PartNo, &it.MakerPartName, &it.DisplayName, &it.StockQty, &it.StockUnit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assembly item: %w", err)
		}
		it.Status = domain.PartStatus(status)
		out = append(out, &it)
	}
	return out, rows.Err()
}
