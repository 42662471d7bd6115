package application

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
)

// ToolingListManager maintains tooling lists: which assembly sits at which
// tool number.
type ToolingListManager struct {
	*base
}

func itemRef(parentCode string, itemID int64) string {
	return fmt.Sprintf("%d in %s", itemID, parentCode)
}

// AddToolingList creates an empty list.
func (s *ToolingListManager) AddToolingList(ctx context.Context, title string, note *string) (code string, err error) {
	ctx, span := s.start(ctx, tracing.SpanPrefixTooling+"add")
	defer func() { tracing.End(span, err) }()

	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Invalid("title", "is required")
	}
	note = domain.BlankToNil(note)

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if code, err = r.Codes.Issue(ctx, domain.NamespaceToolingList); err != nil {
			return err
		}
		now := s.now()
		l := &domain.ToolingList{ListCode: code, Title: title, Note: note, CreatedAt: now, UpdatedAt: now}
		if err := r.ToolingLists.Insert(ctx, l); err != nil {
			return err
		}
		return s.record(ctx, r, domain.ActionToolingAdd, domain.TargetToolingList, code, nil,
			map[string]any{"title": title, "note": note}, nil, nil)
	})
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String(tracing.AttrListCode, code))
	log.Info(log.CatTooling, "tooling list added", "list_code", code)
	return code, nil
}

// GetToolingList returns the list with the given code.
func (s *ToolingListManager) GetToolingList(ctx context.Context, code string) (*domain.ToolingList, error) {
	var l *domain.ToolingList
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		l, err = r.ToolingLists.FindByCode(ctx, strings.TrimSpace(code))
		return err
	})
	return l, err
}

// ListToolingLists returns lists, most recently updated first.
func (s *ToolingListManager) ListToolingLists(ctx context.Context, filter domain.ToolingListFilter) ([]*domain.ToolingList, error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultPartListLimit
	}
	var out []*domain.ToolingList
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		out, err = r.ToolingLists.List(ctx, filter)
		return err
	})
	return out, err
}

// UpdateToolingList changes title and/or note. A blank note clears it.
func (s *ToolingListManager) UpdateToolingList(ctx context.Context, code string, u domain.ToolingListUpdate) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixTooling+"update", attribute.String(tracing.AttrListCode, code))
	defer func() { tracing.End(span, err) }()

	if err := u.Validate(); err != nil {
		return err
	}
	return s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		n, err := r.ToolingLists.Update(ctx, code, u, s.now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(domain.KindToolingList, code)
		}
		return s.record(ctx, r, domain.ActionToolingUpdate, domain.TargetToolingList, code, nil, u, nil, nil)
	})
}

// AddToolingListItem mounts an assembly at a tool number and returns the
// item id. A tool number or assembly already on the list is a conflict.
func (s *ToolingListManager) AddToolingListItem(ctx context.Context, code string, in domain.ToolingListItemInput) (itemID int64, err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixTooling+"add_item",
		attribute.String(tracing.AttrListCode, code),
		attribute.String(tracing.AttrAssemblyCode, in.AssemblyCode))
	defer func() { tracing.End(span, err) }()

	if err := in.Validate(); err != nil {
		return 0, err
	}
	assemblyCode := strings.TrimSpace(in.AssemblyCode)
	toolNo := strings.TrimSpace(in.ToolNo)

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		listID, err := r.ToolingLists.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		assemblyID, err := r.Assemblies.IDByCode(ctx, assemblyCode)
		if err != nil {
			return err
		}
		if itemID, err = r.ToolingLists.InsertItem(ctx, listID, assemblyID, toolNo, in.Qty, in.Note); err != nil {
			return err
		}
		if err := r.ToolingLists.Touch(ctx, listID, s.now()); err != nil {
			return err
		}
		patch := map[string]any{"item_id": itemID, "assembly_code": assemblyCode, "tool_no": toolNo, "qty": in.Qty}
		return s.record(ctx, r, domain.ActionToolingItemAdd, domain.TargetToolingList, code, nil, patch, nil, nil)
	})
	if err != nil {
		return 0, err
	}
	log.Info(log.CatTooling, "tooling list item added", "list_code", code, "tool_no", toolNo, "assembly_code", assemblyCode)
	return itemID, nil
}

// RemoveToolingListItem deletes an item of the given list.
func (s *ToolingListManager) RemoveToolingListItem(ctx context.Context, code string, itemID int64) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixTooling+"remove_item",
		attribute.String(tracing.AttrListCode, code),
		attribute.Int64(tracing.AttrItemID, itemID))
	defer func() { tracing.End(span, err) }()

	return s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		listID, err := r.ToolingLists.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		n, err := r.ToolingLists.DeleteItem(ctx, listID, itemID)
		if err != nil {
			return err
		}
		if n != 1 {
			return domain.NotFound(domain.KindToolingListItem, itemRef(code, itemID))
		}
		if err := r.ToolingLists.Touch(ctx, listID, s.now()); err != nil {
			return err
		}
		return s.record(ctx, r, domain.ActionToolingItemDel, domain.TargetToolingList, code, nil,
			map[string]any{"item_id": itemID}, nil, nil)
	})
}

// ReplaceToolingListItems swaps the whole item set of a list. The batch is
// validated in full before anything is deleted; the delete, the inserts and
// the list's updated_at refresh then commit together.
func (s *ToolingListManager) ReplaceToolingListItems(ctx context.Context, code string, entries []domain.BatchEntry) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixTooling+"replace_items",
		attribute.String(tracing.AttrListCode, code),
		attribute.Int(tracing.AttrItemCount, len(entries)))
	defer func() { tracing.End(span, err) }()

	items, err := domain.NormalizeBatch(entries)
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		listID, err := r.ToolingLists.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		if err := r.ToolingLists.DeleteAllItems(ctx, listID); err != nil {
			return err
		}
		for _, it := range items {
			assemblyID, err := r.Assemblies.IDByCode(ctx, it.AssemblyCode)
			if err != nil {
				return err
			}
			if _, err := r.ToolingLists.InsertItem(ctx, listID, assemblyID, it.ToolNo, it.Qty, it.Note); err != nil {
				return err
			}
		}
		if err := r.ToolingLists.Touch(ctx, listID, s.now()); err != nil {
			return err
		}
		return s.record(ctx, r, domain.ActionToolingItemsSwap, domain.TargetToolingList, code, nil,
			map[string]any{"items": items}, nil, nil)
	})
	if err != nil {
		return err
	}
	log.Info(log.CatTooling, "tooling list items replaced", "list_code", code, "count", len(items))
	return nil
}

// ListToolingListItems returns items ordered by tool number.
func (s *ToolingListManager) ListToolingListItems(ctx context.Context, code string, limit int) ([]*domain.ToolingListItem, error) {
	if limit <= 0 {
		limit = domain.DefaultItemListLimit
	}
	var items []*domain.ToolingListItem
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		listID, err := r.ToolingLists.IDByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return err
		}
		items, err = r.ToolingLists.ListItems(ctx, listID, limit)
		return err
	})
	return items, err
}
