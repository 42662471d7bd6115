package domain

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ToolingList is a named set of assemblies, each mounted at a tool number.
type ToolingList struct {
	ID        int64     `json:"-"`
	ListCode  string    `json:"list_code"`
	Title     string    `json:"title"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolingListUpdate carries the list columns to change. A non-nil blank Note
// clears the note; a non-nil blank Title is rejected.
type ToolingListUpdate struct {
	Title *string `json:"title,omitempty"`
	Note  *string `json:"note,omitempty"`
}

// Validate checks the update before any write.
func (u ToolingListUpdate) Validate() error {
	if u.Title == nil && u.Note == nil {
		return Invalid("update", "no fields to update")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return Invalid("title", "must not be empty")
	}
	return nil
}

// ToolingListFilter narrows ListToolingLists.
type ToolingListFilter struct {
	Query string
	Limit int
}

// ToolingListItemInput is a single item added to a list.
type ToolingListItemInput struct {
	AssemblyCode string  `json:"assembly_code"`
	ToolNo       string  `json:"tool_no"`
	Qty          float64 `json:"qty"`
	Note         *string `json:"note"`
}

// UnmarshalJSON defaults a missing or null qty to 1.
func (in *ToolingListItemInput) UnmarshalJSON(data []byte) error {
	type plain ToolingListItemInput
	p := plain{Qty: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = ToolingListItemInput(p)
	return nil
}

// Validate checks the input before any write.
func (in ToolingListItemInput) Validate() error {
	if strings.TrimSpace(in.AssemblyCode) == "" {
		return Invalid("assembly_code", "is required")
	}
	if strings.TrimSpace(in.ToolNo) == "" {
		return Invalid("tool_no", "is required")
	}
	if !ValidQty(in.Qty) {
		return Invalid("qty", "must be a finite number > 0 (got %v)", in.Qty)
	}
	return nil
}

// ToolingListItem is a list item joined with its assembly.
type ToolingListItem struct {
	ItemID            int64     `json:"item_id"`
	ToolNo            string    `json:"tool_no"`
	Qty               float64   `json:"qty"`
	ItemNote          *string   `json:"item_note"`
	AssemblyCode      string    `json:"assembly_code"`
	AssemblyName      string    `json:"assembly_name"`
	ToolDiameter      *float64  `json:"tool_diameter"`
	ToolOverallLength *float64  `json:"tool_overall_length"`
	AssemblyNote      *string   `json:"assembly_note"`
	AssemblyUpdatedAt time.Time `json:"assembly_updated_at"`
}

// BatchEntry is one raw row of a replace batch as submitted by a front end.
// Qty is kept loosely typed so that coercion follows the batch rules.
type BatchEntry struct {
	AssemblyCode string  `json:"assembly_code"`
	ToolNo       string  `json:"tool_no"`
	Qty          any     `json:"qty"`
	Note         *string `json:"note"`
}

// UnmarshalJSON accepts numeric tool numbers and assembly codes.
func (e *BatchEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = BatchEntry{
		AssemblyCode: cast.ToString(raw["assembly_code"]),
		ToolNo:       cast.ToString(raw["tool_no"]),
		Qty:          raw["qty"],
	}
	if n, ok := raw["note"]; ok && n != nil {
		s := cast.ToString(n)
		e.Note = &s
	}
	return nil
}

// BatchItem is a validated, normalized replace-batch row.
type BatchItem struct {
	AssemblyCode string  `json:"assembly_code"`
	ToolNo       string  `json:"tool_no"`
	Qty          float64 `json:"qty"`
	Note         *string `json:"note"`
}

// CoerceQty converts a loosely typed quantity. Missing or unparseable values
// become 1.0.
func CoerceQty(raw any) float64 {
	if raw == nil || isBlankString(raw) {
		return 1.0
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 1.0
	}
	return f
}

// ValidQty reports whether qty is a finite positive number. NaN and infinities
// parse as floats but cannot be stored.
func ValidQty(qty float64) bool {
	return qty > 0 && !math.IsInf(qty, 0)
}

// NormalizeBatch validates a whole replace batch without touching storage and
// stops at the first violation: blank assembly_code, blank tool_no, a qty
// that is not finite and positive,
// a repeated tool_no, or a repeated assembly_code.
func NormalizeBatch(entries []BatchEntry) ([]BatchItem, error) {
	out := make([]BatchItem, 0, len(entries))
	seenToolNo := make(map[string]struct{}, len(entries))
	seenAssembly := make(map[string]struct{}, len(entries))

	for i, e := range entries {
		ac := strings.TrimSpace(e.AssemblyCode)
		tn := strings.TrimSpace(e.ToolNo)
		if ac == "" {
			return nil, Invalid("assembly_code", "is required (item %d)", i+1)
		}
		if tn == "" {
			return nil, Invalid("tool_no", "is required (assembly %s)", ac)
		}
		qty := CoerceQty(e.Qty)
		if !ValidQty(qty) {
			return nil, Invalid("qty", "must be a finite number > 0 (assembly %s)", ac)
		}
		if _, dup := seenToolNo[tn]; dup {
			return nil, Invalid("tool_no", "duplicate tool_no %s", tn)
		}
		if _, dup := seenAssembly[ac]; dup {
			return nil, Invalid("assembly_code", "duplicate assembly_code %s", ac)
		}
		seenToolNo[tn] = struct{}{}
		seenAssembly[ac] = struct{}{}

		out = append(out, BatchItem{
			AssemblyCode: ac,
			ToolNo:       tn,
			Qty:          qty,
			Note:         BlankToNil(e.Note),
		})
	}
	return out, nil
}
