package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

const issueSQL = `UPDATE id_sequences
	SET next_no = next_no + 1
	WHERE layer_code = ?
	RETURNING next_no - 1`

// IssueCode reserves the next number of namespace and renders it as a code.
// It runs on the caller's transaction, so the increment commits or rolls back
// together with whatever the code was issued for. Returns NotFoundError when
// the namespace has no sequence row.
func IssueCode(ctx context.Context, q Querier, namespace string, format domain.CodeFormat) (string, error) {
	var n int64
	err := q.QueryRowContext(ctx, issueSQL, namespace).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NotFound(domain.KindSequenceNamespace, namespace)
	}
	if err != nil {
		return "", fmt.Errorf("failed to issue code for %s: %w", namespace, err)
	}
	return format.Format(namespace, n), nil
}

// codeIssuer binds IssueCode to one transaction.
type codeIssuer struct {
	q      Querier
	format domain.CodeFormat
}

func (c *codeIssuer) Issue(ctx context.Context, namespace string) (string, error) {
	return IssueCode(ctx, c.q, namespace, c.format)
}
