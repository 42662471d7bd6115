package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type fieldKind int

const (
	kindText         fieldKind = iota // non-blank string
	kindNullableText                  // string or NULL; blank clears
	kindStatus                        // non-blank, upper-cased
	kindFloat                         // number, NOT NULL
	kindNullableFloat
	kindNullableInt
	kindNullableDecimal
)

// patchable is the allow-list of part columns UpdatePart may touch.
var patchable = map[string]fieldKind{
	"layer_code":         kindText,
	"category_code":      kindNullableText,
	"category_free_text": kindNullableText,
	"display_name":       kindText,
	"maker_part_name":    kindNullableText,
	"stock_qty":          kindFloat,
	"stock_unit":         kindText,
	"pack_qty":           kindNullableFloat,
	"unit_price":         kindNullableDecimal,
	"supplier":           kindNullableText,
	"lead_time_days":     kindNullableInt,
	"min_stock_qty":      kindNullableFloat,
	"status":             kindStatus,
	"note":               kindNullableText,
}

// PatchableFields returns the allow-listed part columns in sorted order.
func PatchableFields() []string {
	out := make([]string, 0, len(patchable))
	for k := range patchable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsPatchable reports whether column may appear in a PartPatch.
func IsPatchable(column string) bool {
	_, ok := patchable[column]
	return ok
}

// PartPatch maps part column names to new values. Values arrive loosely typed
// from the CLI (strings) or from JSON (float64, string, nil); Normalize coerces
// them to the column types.
type PartPatch map[string]any

// Keys returns the patch keys in sorted order.
func (p PartPatch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize validates p against the allow-list and returns a copy whose values
// are ready to bind as SQL arguments: string, float64, int64, decimal.NullDecimal
// or nil.
func (p PartPatch) Normalize() (PartPatch, error) {
	if len(p) == 0 {
		return nil, Invalid("patch", "no fields to update")
	}

	var unknown []string
	for _, k := range p.Keys() {
		if !IsPatchable(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return nil, Invalid("patch", "unknown fields: %s", strings.Join(unknown, ", "))
	}

	out := make(PartPatch, len(p))
	for _, k := range p.Keys() {
		v, err := coerce(k, patchable[k], p[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Has reports whether key is present in the patch.
func (p PartPatch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// TextOrNil returns the patched value of a text column as a pointer, nil for NULL.
// Only meaningful on a normalized patch.
func (p PartPatch) TextOrNil(key string) *string {
	v, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func coerce(field string, kind fieldKind, raw any) (any, error) {
	switch kind {
	case kindText, kindStatus:
		if raw == nil {
			return nil, Invalid(field, "must not be empty")
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, Invalid(field, "expected text: %v", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, Invalid(field, "must not be empty")
		}
		if kind == kindStatus {
			s = strings.ToUpper(s)
			if !PartStatus(s).IsValid() {
				return nil, Invalid(field, "unknown status %q", s)
			}
		}
		return s, nil

	case kindNullableText:
		if raw == nil {
			return nil, nil
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, Invalid(field, "expected text: %v", err)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return strings.TrimSpace(s), nil

	case kindFloat:
		if raw == nil || isBlankString(raw) {
			return nil, Invalid(field, "must be a number")
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, Invalid(field, "must be a number: %v", raw)
		}
		return f, nil

	case kindNullableFloat:
		if raw == nil || isBlankString(raw) {
			return nil, nil
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, Invalid(field, "must be a number: %v", raw)
		}
		return f, nil

	case kindNullableInt:
		if raw == nil || isBlankString(raw) {
			return nil, nil
		}
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, Invalid(field, "must be an integer: %v", raw)
		}
		return n, nil

	case kindNullableDecimal:
		if raw == nil || isBlankString(raw) {
			return decimal.NullDecimal{}, nil
		}
		switch v := raw.(type) {
		case decimal.Decimal:
			return decimal.NewNullDecimal(v), nil
		case decimal.NullDecimal:
			return v, nil
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, Invalid(field, "must be a decimal: %v", raw)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, Invalid(field, "must be a decimal: %v", raw)
		}
		return decimal.NewNullDecimal(d), nil
	}
	return nil, fmt.Errorf("unhandled field kind for %s", field)
}

func isBlankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// ParseAssignments turns CLI "key=value" pairs into a PartPatch. A bare
// "key=" clears nullable columns.
func ParseAssignments(pairs []string) (PartPatch, error) {
	patch := make(PartPatch, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, Invalid("patch", "expected key=value, got %q", pair)
		}
		if patch.Has(key) {
			return nil, Invalid("patch", "field %s given twice", key)
		}
		patch[key] = value
	}
	return patch, nil
}
