package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// PlaceholderAssemblyName is the display name of an assembly created without
// one, until a signature is applied.
const PlaceholderAssemblyName = "NEW_ASSEMBLY"

// DefaultItemListLimit caps assembly and tooling list item listings.
const DefaultItemListLimit = 500

// AllItems requests an uncapped item listing. Signatures are always derived
// from every item.
const AllItems = -1

// Assembly is a named composition of parts.
type Assembly struct {
	ID                int64     `json:"-"`
	AssemblyCode      string    `json:"assembly_code"`
	DisplayName       string    `json:"display_name"`
	ToolOverallLength *float64  `json:"tool_overall_length"`
	ToolDiameter      *float64  `json:"tool_diameter"`
	Note              *string   `json:"note"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewAssembly is the input for creating an assembly.
type NewAssembly struct {
	DisplayName       *string  `json:"display_name"`
	ToolOverallLength *float64 `json:"tool_overall_length"`
	ToolDiameter      *float64 `json:"tool_diameter"`
	Note              *string  `json:"note"`
}

// AssemblyUpdate carries the assembly columns to change; nil fields are left alone.
type AssemblyUpdate struct {
	DisplayName       *string  `json:"display_name,omitempty"`
	ToolOverallLength *float64 `json:"tool_overall_length,omitempty"`
	ToolDiameter      *float64 `json:"tool_diameter,omitempty"`
	Note              *string  `json:"note,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u AssemblyUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.ToolOverallLength == nil && u.ToolDiameter == nil && u.Note == nil
}

// Validate rejects a display name patched to blank.
func (u AssemblyUpdate) Validate() error {
	if u.IsEmpty() {
		return Invalid("update", "no fields to update")
	}
	if u.DisplayName != nil && strings.TrimSpace(*u.DisplayName) == "" {
		return Invalid("display_name", "must not be empty")
	}
	return nil
}

// AssemblyFilter narrows ListAssemblies.
type AssemblyFilter struct {
	Query string
	Limit int
}

// AssemblyItemInput is one part to attach to an assembly.
type AssemblyItemInput struct {
	PartAssetCode string  `json:"part_asset_code"`
	Qty           float64 `json:"qty"`
	Role          *string `json:"role"`
	Note          *string `json:"note"`
}

// UnmarshalJSON defaults a missing or null qty to 1.
func (in *AssemblyItemInput) UnmarshalJSON(data []byte) error {
	type plain AssemblyItemInput
	p := plain{Qty: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*in = AssemblyItemInput(p)
	return nil
}

// Validate checks the input before any write.
func (in AssemblyItemInput) Validate() error {
	if strings.TrimSpace(in.PartAssetCode) == "" {
		return Invalid("part_asset_code", "is required")
	}
	if !ValidQty(in.Qty) {
		return Invalid("qty", "must be a finite number > 0 (got %v)", in.Qty)
	}
	return nil
}

// AssemblyItem is an assembly item joined with the attributes of its part.
type AssemblyItem struct {
	ItemID           int64      `json:"item_id"`
	Qty              float64    `json:"qty"`
	Role             *string    `json:"role"`
	ItemNote         *string    `json:"item_note"`
	AssetCode        string     `json:"asset_code"`
	LayerCode        string     `json:"layer_code"`
	CategoryCode     *string    `json:"category_code"`
	CategoryFreeText *string    `json:"category_free_text"`
	Status           PartStatus `json:"status"`
	Maker            string     `json:"maker"`
	PartNo           string     `json:"part_no"`
	MakerPartName    *string    `json:"maker_part_name"`
	DisplayName      string     `json:"display_name"`
	StockQty         float64    `json:"stock_qty"`
	StockUnit        string     `json:"stock_unit"`
}
