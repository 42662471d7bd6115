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

const partColumns = `id, asset_code, layer_code, category_code, category_free_text, part_no, maker,
	maker_part_name, display_name, stock_qty, stock_unit, pack_qty, unit_price, supplier,
	lead_time_days, min_stock_qty, status, note, created_at, updated_at`

// partRepository implements domain.PartRepository.
type partRepository struct {
	q Querier
}

var _ domain.PartRepository = (*partRepository)(nil)

func scanPart(s scanner) (*domain.Part, error) {
	var (
		p                    domain.Part
		status               string
		createdAt, updatedAt int64
	)
	err := s.Scan(
		&p.ID, &p.AssetCode, &p.LayerCode, &p.CategoryCode, &p.CategoryFreeText, &p.PartNo, &p.Maker,
		&p.MakerPartName, &p.DisplayName, &p.StockQty, &p.StockUnit, &p.PackQty, &p.UnitPrice, &p.Supplier,
		&p.LeadTimeDays, &p.MinStockQty, &status, &p.Note, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PartStatus(status)
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return &p, nil
}

// Insert stores a new part and sets its ID.
func (r *partRepository) Insert(ctx context.Context, p *domain.Part) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO parts (
			asset_code, layer_code, category_code, category_free_text, part_no, maker,
			maker_part_name, display_name, stock_qty, stock_unit, pack_qty, unit_price, supplier,
			lead_time_days, min_stock_qty, status, note, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AssetCode, p.LayerCode, p.CategoryCode, p.CategoryFreeText, p.PartNo, p.Maker,
		p.MakerPartName, p.DisplayName, p.StockQty, p.StockUnit, p.PackQty, p.UnitPrice, p.Supplier,
		p.LeadTimeDays, p.MinStockQty, string(p.Status), p.Note, toUnix(p.CreatedAt), toUnix(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert part: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// FindByCode retrieves a part by asset code.
func (r *partRepository) FindByCode(ctx context.Context, assetCode string) (*domain.Part, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+partColumns+` FROM parts WHERE asset_code = ?`, assetCode)
	p, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(domain.KindPart, assetCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find part: %w", err)
	}
	return p, nil
}

// IDByCode resolves an asset code to the internal id.
func (r *partRepository) IDByCode(ctx context.Context, assetCode string) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `SELECT id FROM parts WHERE asset_code = ?`, assetCode).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFound(domain.KindPart, assetCode)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve part: %w", err)
	}
	return id, nil
}

// List returns parts matching filter ordered by layer, category and code.
func (r *partRepository) List(ctx context.Context, filter domain.PartFilter) ([]*domain.Part, error) {
	filter = filter.Normalized()

	query := `SELECT ` + partColumns + ` FROM parts WHERE 1=1`
	var args []any
	if filter.LayerCode != "" {
		query += ` AND layer_code = ?`
		args = append(args, filter.LayerCode)
	}
	if filter.CategoryCode != "" {
		query += ` AND category_code = ?`
		args = append(args, filter.CategoryCode)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Query != "" {
		like := likePattern(filter.Query)
		query += ` AND (asset_code LIKE ? OR display_name LIKE ? OR part_no LIKE ? OR maker LIKE ?)`
		args = append(args, like, like, like, like)
	}
	query += ` ORDER BY layer_code, category_code, asset_code LIMIT ?`
	args = append(args, filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var parts []*domain.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part row: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating part rows: %w", err)
	}
	return parts, nil
}

// Update applies a normalized patch and refreshes updated_at in the same
// statement. Only allow-listed columns are written.
func (r *partRepository) Update(ctx context.Context, assetCode string, patch domain.PartPatch, now time.Time) (int64, error) {
	keys := patch.Keys()
	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		if !domain.IsPatchable(k) {
			return 0, domain.Invalid("patch", "unknown fields: %s", k)
		}
		sets = append(sets, k+" = ?")
		args = append(args, patch[k])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, toUnix(now), assetCode)

	n, err := rowsAffected(r.q.ExecContext(ctx,
		`UPDATE parts SET `+strings.Join(sets, ", ")+` WHERE asset_code = ?`, args...))
	if err != nil {
		return 0, fmt.Errorf("failed to update part: %w", err)
	}
	return n, nil
}
