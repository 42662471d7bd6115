// Package domain holds the inventory entities (parts, assemblies, tooling lists,
// operation logs), the pure rules that act on them, and the repository
// interfaces the storage layer implements.
//
// Nothing in this package touches a database or the filesystem.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PartStatus is the lifecycle status of a part.
type PartStatus string

const (
	StatusActive   PartStatus = "ACTIVE"
	StatusArchived PartStatus = "ARCHIVED"
)

// String returns the status code.
func (s PartStatus) String() string {
	return string(s)
}

// IsValid returns true for ACTIVE and ARCHIVED.
func (s PartStatus) IsValid() bool {
	return s == StatusActive || s == StatusArchived
}

// DefaultStockUnit is used when a part is added without a unit.
const DefaultStockUnit = "EA"

// Part is a cataloged physical item identified by its asset code.
type Part struct {
	ID               int64               `json:"-"`
	AssetCode        string              `json:"asset_code"`
	LayerCode        string              `json:"layer_code"`
	CategoryCode     *string             `json:"category_code"`
	CategoryFreeText *string             `json:"category_free_text"`
	PartNo           string              `json:"part_no"`
	Maker            string              `json:"maker"`
	MakerPartName    *string             `json:"maker_part_name"`
	DisplayName      string              `json:"display_name"`
	StockQty         float64             `json:"stock_qty"`
	StockUnit        string              `json:"stock_unit"`
	PackQty          *float64            `json:"pack_qty"`
	UnitPrice        decimal.NullDecimal `json:"unit_price"`
	Supplier         *string             `json:"supplier"`
	LeadTimeDays     *int64              `json:"lead_time_days"`
	MinStockQty      *float64            `json:"min_stock_qty"`
	Status           PartStatus          `json:"status"`
	Note             *string             `json:"note"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewPart is the input for registering a part.
type NewPart struct {
	LayerCode        string  `json:"layer_code"`
	CategoryCode     *string `json:"category_code"`
	CategoryFreeText *string `json:"category_free_text"`
	PartNo           string  `json:"part_no"`
	Maker            string  `json:"maker"`
	MakerPartName    *string `json:"maker_part_name"`
	DisplayName      *string `json:"display_name"`
	StockUnit        string  `json:"stock_unit"`
}

// PartFilter narrows ListParts. Zero values mean "no filter".
type PartFilter struct {
	LayerCode    string
	CategoryCode string
	Status       string
	Query        string
	Limit        int
}

// DefaultPartListLimit is applied when PartFilter.Limit is not positive.
const DefaultPartListLimit = 200

// Normalized returns a copy of f with codes trimmed, status upper-cased and
// the default limit applied.
func (f PartFilter) Normalized() PartFilter {
	out := PartFilter{
		LayerCode:    strings.TrimSpace(f.LayerCode),
		CategoryCode: strings.TrimSpace(f.CategoryCode),
		Status:       strings.ToUpper(strings.TrimSpace(f.Status)),
		Query:        strings.TrimSpace(f.Query),
		Limit:        f.Limit,
	}
	if out.Limit <= 0 {
		out.Limit = DefaultPartListLimit
	}
	return out
}

// BlankToNil trims s and returns nil when nothing is left.
func BlankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
