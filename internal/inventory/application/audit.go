package application

import (
	"context"
	"strings"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// AuditTrail reads the operation log.
type AuditTrail struct {
	*base
}

// History returns the entries recorded against one target, oldest first.
func (s *AuditTrail) History(ctx context.Context, targetType, code string, limit int) ([]*domain.OperationLog, error) {
	targetType = strings.ToUpper(strings.TrimSpace(targetType))
	switch targetType {
	case domain.TargetPart, domain.TargetAssembly, domain.TargetToolingList:
	default:
		return nil, domain.Invalid("target_type", "unknown target type %q", targetType)
	}

	var logs []*domain.OperationLog
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		logs, err = r.Logs.ListByTarget(ctx, targetType, strings.TrimSpace(code), limit)
		return err
	})
	return logs, err
}

// Labels returns the display labels stored in the dictionary tables.
func (s *AuditTrail) Labels(ctx context.Context) (*domain.Labels, error) {
	var labels *domain.Labels
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		labels, err = r.Dictionary.Labels(ctx)
		return err
	})
	return labels, err
}
