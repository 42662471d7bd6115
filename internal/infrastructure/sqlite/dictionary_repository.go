package sqlite

import (
	"context"
	"fmt"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// dictionaryRepository reads the seeded dictionary tables.
type dictionaryRepository struct {
	q Querier
}

var _ domain.DictionaryRepository = (*dictionaryRepository)(nil)

func (r *dictionaryRepository) Labels(ctx context.Context) (*domain.Labels, error) {
	labels := &domain.Labels{}
	var err error
	if labels.Layers, err = r.labelMap(ctx, `SELECT code, label FROM layers ORDER BY sort_order`); err != nil {
		return nil, err
	}
	if labels.Categories, err = r.labelMap(ctx, `SELECT code, label FROM categories ORDER BY layer_code, sort_order`); err != nil {
		return nil, err
	}
	if labels.Statuses, err = r.labelMap(ctx, `SELECT code, label FROM statuses`); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *dictionaryRepository) labelMap(ctx context.Context, query string) (map[string]string, error) {
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var code, label string
		if err := rows.Scan(&code, &label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		out[code] = label
	}
	return out, rows.Err()
}
