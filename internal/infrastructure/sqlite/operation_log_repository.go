package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// operationLogRepository implements domain.OperationLogRepository. The table
// has triggers that reject UPDATE and DELETE.
type operationLogRepository struct {
	q Querier
}

var _ domain.OperationLogRepository = (*operationLogRepository)(nil)

func nullableJSON(doc []byte) any {
	if doc == nil {
		return nil
	}
	return string(doc)
}

func (r *operationLogRepository) Append(ctx context.Context, e *domain.OperationLog) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO operation_logs (action, target_type, target_code, actor, reason, patch_json, before_json, after_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Action, e.TargetType, e.TargetCode, e.Actor, e.Reason,
		nullableJSON(e.Patch), nullableJSON(e.Before), nullableJSON(e.After), toUnix(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append operation log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// ListByTarget returns entries for one target, oldest first.
func (r *operationLogRepository) ListByTarget(ctx context.Context, targetType, targetCode string, limit int) ([]*domain.OperationLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, action, target_type, target_code, actor, reason, patch_json, before_json, after_json, created_at
		 FROM operation_logs
		 WHERE target_type = ? AND target_code = ?
		 ORDER BY id
		 LIMIT ?`,
		targetType, targetCode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list operation logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.OperationLog
	for rows.Next() {
		var (
			e                    domain.OperationLog
			patch, before, after *string
			createdAt            int64
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.TargetType, &e.TargetCode, &e.Actor, &e.Reason,
			&patch, &before, &after, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation log: %w", err)
		}
		e.Patch = rawJSON(patch)
		e.Before = rawJSON(before)
		e.After = rawJSON(after)
		e.CreatedAt = fromUnix(createdAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func rawJSON(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}
