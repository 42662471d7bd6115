package presentation

import (
	"fmt"
	"time"

	"github.com/zjrosen/toolasset/internal/catalog"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

const timeLayout = "2006-01-02 15:04"

func stamp(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func labelled(labels map[string]string, code string) string {
	if l, ok := labels[code]; ok && l != "" {
		return l + " (" + code + ")"
	}
	return code
}

func categoryText(p *domain.Part, labels *domain.Labels) string {
	if p.CategoryCode != nil {
		if labels != nil {
			return labelled(labels.Categories, *p.CategoryCode)
		}
		return *p.CategoryCode
	}
	return orDash(p.CategoryFreeText)
}

func statusText(status domain.PartStatus, labels *domain.Labels) string {
	text := string(status)
	if labels != nil {
		text = labelled(labels.Statuses, text)
	}
	if status == domain.StatusArchived {
		return archivedStyle.Render(text)
	}
	return text
}

func layerText(layer string, labels *domain.Labels) string {
	if labels == nil {
		return layer
	}
	return labelled(labels.Layers, layer)
}

// Parts lists parts. labels may be nil.
func (f *Formatter) Parts(parts []*domain.Part, labels *domain.Labels) error {
	if f.json {
		if parts == nil {
			parts = []*domain.Part{}
		}
		return f.Value(parts)
	}
	rows := make([][]string, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, []string{
			p.AssetCode,
			layerText(p.LayerCode, labels),
			categoryText(p, labels),
			p.DisplayName,
			p.Maker,
			p.PartNo,
			formatFloat(p.StockQty) + " " + p.StockUnit,
			statusText(p.Status, labels),
		})
	}
	return f.Table([]string{"ASSET CODE", "LAYER", "CATEGORY", "NAME", "MAKER", "PART NO", "STOCK", "STATUS"}, rows)
}

// Part shows every attribute of one part.
func (f *Formatter) Part(p *domain.Part, labels *domain.Labels) error {
	if f.json {
		return f.Value(p)
	}
	price := "-"
	if p.UnitPrice.Valid {
		price = p.UnitPrice.Decimal.StringFixed(2)
	}
	lead := "-"
	if p.LeadTimeDays != nil {
		lead = fmt.Sprintf("%d days", *p.LeadTimeDays)
	}
	return f.fields([][2]string{
		{"asset_code", p.AssetCode},
		{"status", statusText(p.Status, labels)},
		{"layer", layerText(p.LayerCode, labels)},
		{"category", categoryText(p, labels)},
		{"display_name", p.DisplayName},
		{"maker", p.Maker},
		{"part_no", p.PartNo},
		{"maker_part_name", orDash(p.MakerPartName)},
		{"stock", formatFloat(p.StockQty) + " " + p.StockUnit},
		{"pack_qty", floatOrDash(p.PackQty)},
		{"min_stock_qty", floatOrDash(p.MinStockQty)},
		{"unit_price", price},
		{"supplier", orDash(p.Supplier)},
		{"lead_time", lead},
		{"note", orDash(p.Note)},
		{"created_at", stamp(p.CreatedAt)},
		{"updated_at", stamp(p.UpdatedAt)},
	})
}

// Assemblies lists assemblies.
func (f *Formatter) Assemblies(assemblies []*domain.Assembly) error {
	if f.json {
		if assemblies == nil {
			assemblies = []*domain.Assembly{}
		}
		return f.Value(assemblies)
	}
	rows := make([][]string, 0, len(assemblies))
	for _, a := range assemblies {
		rows = append(rows, []string{
			a.AssemblyCode, a.DisplayName, floatOrDash(a.ToolDiameter), floatOrDash(a.ToolOverallLength), stamp(a.UpdatedAt),
		})
	}
	return f.Table([]string{"CODE", "NAME", "DIAMETER", "LENGTH", "UPDATED"}, rows)
}

// AssemblyDetail is an assembly with its items, as rendered by `assemblies show`.
type AssemblyDetail struct {
	*domain.Assembly
	Signature string                 `json:"signature"`
	Items     []*domain.AssemblyItem `json:"items"`
}

// Assembly shows one assembly and its items.
func (f *Formatter) Assembly(d AssemblyDetail) error {
	if d.Items == nil {
		d.Items = []*domain.AssemblyItem{}
	}
	if f.json {
		return f.Value(d)
	}
	if err := f.fields([][2]string{
		{"assembly_code", d.AssemblyCode},
		{"display_name", d.DisplayName},
		{"signature", d.Signature},
		{"tool_diameter", floatOrDash(d.ToolDiameter)},
		{"tool_overall_length", floatOrDash(d.ToolOverallLength)},
		{"note", orDash(d.Note)},
		{"updated_at", stamp(d.UpdatedAt)},
	}); err != nil {
		return err
	}
	if len(d.Items) == 0 {
		return f.println(mutedStyle.Render("(no items)"))
	}
	rows := make([][]string, 0, len(d.Items))
	for _, it := range d.Items {
		rows = append(rows, []string{
			fmt.Sprint(it.ItemID), it.AssetCode, it.LayerCode, it.DisplayName, formatFloat(it.Qty), orDash(it.Role), string(it.Status),
		})
	}
	return f.Table([]string{"ITEM", "PART", "LAYER", "NAME", "QTY", "ROLE", "STATUS"}, rows)
}

// ToolingLists lists tooling lists.
func (f *Formatter) ToolingLists(lists []*domain.ToolingList) error {
	if f.json {
		if lists == nil {
			lists = []*domain.ToolingList{}
		}
		return f.Value(lists)
	}
	rows := make([][]string, 0, len(lists))
	for _, l := range lists {
		rows = append(rows, []string{l.ListCode, l.Title, orDash(l.Note), stamp(l.UpdatedAt)})
	}
	return f.Table([]string{"CODE", "TITLE", "NOTE", "UPDATED"}, rows)
}

// ToolingListDetail is a list with its items.
type ToolingListDetail struct {
	*domain.ToolingList
	Items []*domain.ToolingListItem `json:"items"`
}

// ToolingList shows one list and its items in tool number order.
func (f *Formatter) ToolingList(d ToolingListDetail) error {
	if d.Items == nil {
		d.Items = []*domain.ToolingListItem{}
	}
	if f.json {
		return f.Value(d)
	}
	if err := f.fields([][2]string{
		{"list_code", d.ListCode},
		{"title", d.Title},
		{"note", orDash(d.Note)},
		{"updated_at", stamp(d.UpdatedAt)},
	}); err != nil {
		return err
	}
	if len(d.Items) == 0 {
		return f.println(mutedStyle.Render("(no items)"))
	}
	rows := make([][]string, 0, len(d.Items))
	for _, it := range d.Items {
		rows = append(rows, []string{
			it.ToolNo, fmt.Sprint(it.ItemID), it.AssemblyCode, it.AssemblyName, formatFloat(it.Qty),
			floatOrDash(it.ToolDiameter), floatOrDash(it.ToolOverallLength), orDash(it.ItemNote),
		})
	}
	return f.Table([]string{"T", "ITEM", "ASSEMBLY", "NAME", "QTY", "DIAMETER", "LENGTH", "NOTE"}, rows)
}

// Layers lists the dictionary layers.
func (f *Formatter) Layers(layers []catalog.Layer) error {
	if f.json {
		return f.Value(layers)
	}
	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		free := ""
		if l.AllowFreeCategory {
			free = "yes"
		}
		rows = append(rows, []string{l.Code, l.Label, free})
	}
	return f.Table([]string{"CODE", "LABEL", "FREE CATEGORY"}, rows)
}

// Categories lists dictionary categories.
func (f *Formatter) Categories(categories []catalog.Category) error {
	if f.json {
		if categories == nil {
			categories = []catalog.Category{}
		}
		return f.Value(categories)
	}
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.LayerCode, c.Code, c.Label})
	}
	return f.Table([]string{"LAYER", "CODE", "LABEL"}, rows)
}
