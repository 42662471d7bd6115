package application

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
)

// AssemblyComposer builds assemblies out of parts and names them.
type AssemblyComposer struct {
	*base
}

// AddAssembly creates an empty assembly. A blank name becomes the
// NEW_ASSEMBLY placeholder.
func (s *AssemblyComposer) AddAssembly(ctx context.Context, in domain.NewAssembly) (string, error) {
	return s.ComposeAssembly(ctx, in, nil)
}

// ComposeAssembly creates an assembly together with its items in one
// transaction. When no display name is given and items are present, the
// assembly is named after its signature.
func (s *AssemblyComposer) ComposeAssembly(ctx context.Context, in domain.NewAssembly, items []domain.AssemblyItemInput) (code string, err error) {
	ctx, span := s.start(ctx, tracing.SpanPrefixAssembly+"add", attribute.Int(tracing.AttrItemCount, len(items)))
	defer func() { tracing.End(span, err) }()

	for _, it := range items {
		if err := it.Validate(); err != nil {
			return "", err
		}
	}

	name := domain.BlankToNil(in.DisplayName)
	displayName := domain.PlaceholderAssemblyName
	if name != nil {
		displayName = *name
	}

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if code, err = r.Codes.Issue(ctx, domain.NamespaceAssembly); err != nil {
			return err
		}
		now := s.now()
		a := &domain.Assembly{
			AssemblyCode:      code,
			DisplayName:       displayName,
			ToolOverallLength: in.ToolOverallLength,
			ToolDiameter:      in.ToolDiameter,
			Note:              domain.BlankToNil(in.Note),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := r.Assemblies.Insert(ctx, a); err != nil {
			return err
		}

		for _, it := range items {
			partID, err := r.Parts.IDByCode(ctx, strings.TrimSpace(it.PartAssetCode))
			if err != nil {
				return err
			}
			if _, err := r.Assemblies.InsertItem(ctx, a.ID, partID, it); err != nil {
				return err
			}
		}

		if name == nil && len(items) > 0 {
			joined, err := r.Assemblies.ListItems(ctx, a.ID, domain.AllItems)
			if err != nil {
				return err
			}
			if sig := domain.SignatureOf(joined); sig != "" {
				displayName = sig
				if _, err := r.Assemblies.Update(ctx, code, domain.AssemblyUpdate{DisplayName: &sig}, now); err != nil {
					return err
				}
			}
		}

		patch := map[string]any{"display_name": displayName}
		if len(items) > 0 {
			patch["items"] = items
		}
		return s.record(ctx, r, domain.ActionAssemblyAdd, domain.TargetAssembly, code, nil, patch, nil, nil)
	})
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String(tracing.AttrAssemblyCode, code))
	log.Info(log.CatAssembly, "assembly added", "assembly_code", code, "items", len(items))
	return code, nil
}

// GetAssembly returns the assembly with the given code.
func (s *AssemblyComposer) GetAssembly(ctx context.Context, code string) (*domain.Assembly, error) {
	var a *domain.Assembly
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		a, err = r.Assemblies.FindByCode(ctx, strings.TrimSpace(code))
		return err
	})
	return a, err
}

// ListAssemblies returns assemblies ordered by code.
func (s *AssemblyComposer) ListAssemblies(ctx context.Context, filter domain.AssemblyFilter) ([]*domain.Assembly, error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultPartListLimit
	}
	var out []*domain.Assembly
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		out, err = r.Assemblies.List(ctx, filter)
		return err
	})
	return out, err
}

// UpdateAssembly patches the non-nil fields of u.
func (s *AssemblyComposer) UpdateAssembly(ctx context.Context, code string, u domain.AssemblyUpdate) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixAssembly+"update", attribute.String(tracing.AttrAssemblyCode, code))
	defer func() { tracing.End(span, err) }()

	if err := u.Validate(); err != nil {
		return err
	}
	return s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		n, err := r.Assemblies.Update(ctx, code, u, s.now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(domain.KindAssembly, code)
		}
		return s.record(ctx, r, domain.ActionAssemblyUpdate, domain.TargetAssembly, code, nil, u, nil, nil)
	})
}

// AddAssemblyItem attaches a part to an assembly and returns the item id.
func (s *AssemblyComposer) AddAssemblyItem(ctx context.Context, code string, in domain.AssemblyItemInput) (itemID int64, err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixAssembly+"add_item",
		attribute.String(tracing.AttrAssemblyCode, code),
		attribute.String(tracing.AttrAssetCode, in.PartAssetCode))
	defer func() { tracing.End(span, err) }()

	if err := in.Validate(); err != nil {
		return 0, err
	}
	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		assemblyID, err := r.Assemblies.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		partID, err := r.Parts.IDByCode(ctx, strings.TrimSpace(in.PartAssetCode))
		if err != nil {
			return err
		}
		if itemID, err = r.Assemblies.InsertItem(ctx, assemblyID, partID, in); err != nil {
			return err
		}
		patch := map[string]any{"item_id": itemID, "part_asset_code": in.PartAssetCode, "qty": in.Qty, "role": in.Role}
		return s.record(ctx, r, domain.ActionAssemblyItemAdd, domain.TargetAssembly, code, nil, patch, nil, nil)
	})
	if err != nil {
		return 0, err
	}
	log.Info(log.CatAssembly, "assembly item added", "assembly_code", code, "part", in.PartAssetCode, "item_id", itemID)
	return itemID, nil
}

// RemoveAssemblyItem deletes an item of the given assembly. An item id that
// belongs to another assembly is NotFound.
func (s *AssemblyComposer) RemoveAssemblyItem(ctx context.Context, code string, itemID int64) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixAssembly+"remove_item",
		attribute.String(tracing.AttrAssemblyCode, code),
		attribute.Int64(tracing.AttrItemID, itemID))
	defer func() { tracing.End(span, err) }()

	return s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		assemblyID, err := r.Assemblies.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		n, err := r.Assemblies.DeleteItem(ctx, assemblyID, itemID)
		if err != nil {
			return err
		}
		if n != 1 {
			return domain.NotFound(domain.KindAssemblyItem, itemRef(code, itemID))
		}
		return s.record(ctx, r, domain.ActionAssemblyItemDel, domain.TargetAssembly, code, nil,
			map[string]any{"item_id": itemID}, nil, nil)
	})
}

// ListAssemblyItems returns the items joined with their parts in item order.
// A zero limit means DefaultItemListLimit and AllItems lifts the cap.
func (s *AssemblyComposer) ListAssemblyItems(ctx context.Context, code string, limit int) ([]*domain.AssemblyItem, error) {
	if limit == 0 {
		limit = domain.DefaultItemListLimit
	}
	var items []*domain.AssemblyItem
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		assemblyID, err := r.Assemblies.IDByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return err
		}
		items, err = r.Assemblies.ListItems(ctx, assemblyID, limit)
		return err
	})
	return items, err
}

// Signature derives the current signature of an assembly's items.
func (s *AssemblyComposer) Signature(ctx context.Context, code string) (string, error) {
	items, err := s.ListAssemblyItems(ctx, code, domain.AllItems)
	if err != nil {
		return "", err
	}
	return domain.SignatureOf(items), nil
}

// ApplySignature renames the assembly to its current signature and returns
// it. An assembly without items cannot be renamed this way.
func (s *AssemblyComposer) ApplySignature(ctx context.Context, code string) (sig string, err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixAssembly+"apply_signature", attribute.String(tracing.AttrAssemblyCode, code))
	defer func() { tracing.End(span, err) }()

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		assemblyID, err := r.Assemblies.IDByCode(ctx, code)
		if err != nil {
			return err
		}
		items, err := r.Assemblies.ListItems(ctx, assemblyID, domain.AllItems)
		if err != nil {
			return err
		}
		if sig = domain.SignatureOf(items); sig == "" {
			return domain.Invalid("assembly", "%s has no items to derive a signature from", code)
		}
		u := domain.AssemblyUpdate{DisplayName: &sig}
		if _, err := r.Assemblies.Update(ctx, code, u, s.now()); err != nil {
			return err
		}
		return s.record(ctx, r, domain.ActionAssemblyUpdate, domain.TargetAssembly, code, nil, u, nil, nil)
	})
	if err != nil {
		return "", err
	}
	return sig, nil
}
