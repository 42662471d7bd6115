package application

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
)

// PartRegistry registers parts and tracks their lifecycle.
type PartRegistry struct {
	*base
	validator CategoryValidator
}

// AddPart validates the layer/category pair, issues an asset code from the
// layer's sequence and stores the part as ACTIVE.
func (s *PartRegistry) AddPart(ctx context.Context, in domain.NewPart) (code string, err error) {
	layer := strings.TrimSpace(in.LayerCode)
	ctx, span := s.start(ctx, tracing.SpanPrefixParts+"add", attribute.String(tracing.AttrLayerCode, layer))
	defer func() { tracing.End(span, err) }()

	partNo := strings.TrimSpace(in.PartNo)
	maker := strings.TrimSpace(in.Maker)
	category := domain.BlankToNil(in.CategoryCode)
	freeText := domain.BlankToNil(in.CategoryFreeText)

	if err := s.checkCategory(layer, category, freeText); err != nil {
		return "", err
	}
	if partNo == "" {
		return "", domain.Invalid("part_no", "is required")
	}
	if maker == "" {
		return "", domain.Invalid("maker", "is required")
	}

	displayName := partNo
	if dn := domain.BlankToNil(in.DisplayName); dn != nil {
		displayName = *dn
	}
	unit := strings.TrimSpace(in.StockUnit)
	if unit == "" {
		unit = domain.DefaultStockUnit
	}

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		if code, err = r.Codes.Issue(ctx, layer); err != nil {
			return err
		}
		now := s.now()
		part := &domain.Part{
			AssetCode:        code,
			LayerCode:        layer,
			CategoryCode:     category,
			CategoryFreeText: freeText,
			PartNo:           partNo,
			Maker:            maker,
			MakerPartName:    domain.BlankToNil(in.MakerPartName),
			DisplayName:      displayName,
			StockUnit:        unit,
			Status:           domain.StatusActive,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := r.Parts.Insert(ctx, part); err != nil {
			return err
		}
		after, err := r.Parts.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		patch := map[string]any{"layer_code": layer, "category_code": category}
		return s.record(ctx, r, domain.ActionPartAdd, domain.TargetPart, code, nil, patch, nil, after)
	})
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String(tracing.AttrAssetCode, code))
	log.Info(log.CatParts, "part added", "asset_code", code, "layer", layer)
	return code, nil
}

// checkCategory validates the pair and requires free text whenever no coded
// category is given.
func (s *PartRegistry) checkCategory(layer string, category, freeText *string) error {
	if err := s.validator.ValidateCategory(layer, category); err != nil {
		return err
	}
	if category == nil && freeText == nil {
		return domain.Invalid("category_free_text", "is required when category_code is empty")
	}
	return nil
}

// GetPart returns the part with the given asset code.
func (s *PartRegistry) GetPart(ctx context.Context, code string) (*domain.Part, error) {
	var part *domain.Part
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		part, err = r.Parts.FindByCode(ctx, strings.TrimSpace(code))
		return err
	})
	return part, err
}

// ListParts returns parts ordered by layer, category and asset code.
func (s *PartRegistry) ListParts(ctx context.Context, filter domain.PartFilter) ([]*domain.Part, error) {
	var parts []*domain.Part
	err := s.store.View(ctx, func(ctx context.Context, r domain.Repositories) error {
		var err error
		parts, err = r.Parts.List(ctx, filter.Normalized())
		return err
	})
	return parts, err
}

// UpdatePart applies an allow-listed patch. The category is re-validated
// against the layer and category the part will have afterwards.
func (s *PartRegistry) UpdatePart(ctx context.Context, code string, patch domain.PartPatch, reason *string) error {
	return s.applyPatch(ctx, code, patch, reason, domain.ActionPartUpdate)
}

// ArchivePart marks a part ARCHIVED. A reason is mandatory.
func (s *PartRegistry) ArchivePart(ctx context.Context, code, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalid("reason", "is required to archive a part")
	}
	patch := domain.PartPatch{"status": string(domain.StatusArchived)}
	return s.applyPatch(ctx, code, patch, &reason, domain.ActionPartArchive)
}

// RestorePart marks a part ACTIVE again.
func (s *PartRegistry) RestorePart(ctx context.Context, code string) error {
	patch := domain.PartPatch{"status": string(domain.StatusActive)}
	return s.applyPatch(ctx, code, patch, nil, domain.ActionPartRestore)
}

func (s *PartRegistry) applyPatch(ctx context.Context, code string, patch domain.PartPatch, reason *string, action string) (err error) {
	code = strings.TrimSpace(code)
	ctx, span := s.start(ctx, tracing.SpanPrefixParts+strings.ToLower(strings.TrimPrefix(action, "PART_")),
		attribute.String(tracing.AttrAssetCode, code),
		attribute.String(tracing.AttrAction, action))
	defer func() { tracing.End(span, err) }()

	normalized, err := patch.Normalize()
	if err != nil {
		return err
	}

	err = s.store.Update(ctx, func(ctx context.Context, r domain.Repositories) error {
		before, err := r.Parts.FindByCode(ctx, code)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if before != nil {
			if err := s.checkEffective(before, normalized); err != nil {
				return err
			}
		}

		n, err := r.Parts.Update(ctx, code, normalized, s.now())
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(domain.KindPart, code)
		}

		after, err := r.Parts.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		return s.record(ctx, r, action, domain.TargetPart, code, reason, normalized, before, after)
	})
	if err != nil {
		return err
	}
	log.Info(log.CatParts, "part updated", "asset_code", code, "action", action, "fields", strings.Join(normalized.Keys(), ","))
	return nil
}

// checkEffective validates the layer/category pair the part ends up with.
func (s *PartRegistry) checkEffective(before *domain.Part, patch domain.PartPatch) error {
	if !patch.Has("layer_code") && !patch.Has("category_code") && !patch.Has("category_free_text") {
		return nil
	}
	layer := before.LayerCode
	if patch.Has("layer_code") {
		layer = *patch.TextOrNil("layer_code")
	}
	category := before.CategoryCode
	if patch.Has("category_code") {
		category = patch.TextOrNil("category_code")
	}
	freeText := before.CategoryFreeText
	if patch.Has("category_free_text") {
		freeText = patch.TextOrNil("category_free_text")
	}
	return s.checkCategory(layer, category, freeText)
}
