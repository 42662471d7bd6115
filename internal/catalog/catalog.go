// Package catalog holds the compiled-in layer and category dictionary and
// validates layer/category pairs against it.
package catalog

import (
	"slices"
	"strings"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

// Layer is a structural tier of the tooling stack.
type Layer struct {
	Code              string `json:"code"`
	Label             string `json:"label"`
	SortOrder         int    `json:"sort_order"`
	AllowFreeCategory bool   `json:"allow_free_category"`
}

// Category is a classification within one layer.
type Category struct {
	Code      string `json:"code"`
	LayerCode string `json:"layer_code"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `json:"active"`
}

// Status is a part status with its display label.
type Status struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Dictionary is an immutable lookup over layers and categories. It is safe
// for concurrent use.
type Dictionary struct {
	layers     []Layer
	byCode     map[string]Layer
	categories map[string][]Category
	statuses   []Status
}

// New builds a dictionary. Layers are kept in sort order, categories in sort
// order per layer.
func New(layers []Layer, categories []Category, statuses []Status) *Dictionary {
	d := &Dictionary{
		layers:     slices.Clone(layers),
		byCode:     make(map[string]Layer, len(layers)),
		categories: make(map[string][]Category),
		statuses:   slices.Clone(statuses),
	}
	slices.SortStableFunc(d.layers, func(a, b Layer) int { return a.SortOrder - b.SortOrder })
	for _, l := range d.layers {
		d.byCode[l.Code] = l
	}
	for _, c := range categories {
		d.categories[c.LayerCode] = append(d.categories[c.LayerCode], c)
	}
	for code := range d.categories {
		slices.SortStableFunc(d.categories[code], func(a, b Category) int { return a.SortOrder - b.SortOrder })
	}
	return d
}

// Layers returns all layers in sort order.
func (d *Dictionary) Layers() []Layer {
	return slices.Clone(d.layers)
}

// Layer looks up a layer by code.
func (d *Dictionary) Layer(code string) (Layer, bool) {
	l, ok := d.byCode[code]
	return l, ok
}

// Categories returns the categories of a layer; nil for unknown layers and for
// layers without coded categories.
func (d *Dictionary) Categories(layer string) []Category {
	return slices.Clone(d.categories[layer])
}

// AllCategories returns every category, grouped by layer in layer order.
func (d *Dictionary) AllCategories() []Category {
	var out []Category
	for _, l := range d.layers {
		out = append(out, d.categories[l.Code]...)
	}
	return out
}

// Statuses returns the part statuses.
func (d *Dictionary) Statuses() []Status {
	return slices.Clone(d.statuses)
}

// ValidateLayer reports whether layer is in the dictionary.
func (d *Dictionary) ValidateLayer(layer string) bool {
	_, ok := d.byCode[layer]
	return ok
}

// ValidateCategory checks a layer/category pair. A nil category is accepted
// only for layers that allow free-text categories; a non-nil one must be
// registered under exactly that layer.
func (d *Dictionary) ValidateCategory(layer string, category *string) error {
	l, ok := d.byCode[layer]
	if !ok {
		return domain.Invalid("layer_code", "unknown layer %q", layer)
	}
	if category == nil || strings.TrimSpace(*category) == "" {
		if l.AllowFreeCategory {
			return nil
		}
		return domain.Invalid("category_code", "required for layer %s", layer)
	}
	for _, c := range d.categories[layer] {
		if c.Code == *category {
			return nil
		}
	}
	return domain.Invalid("category_code", "%q is not a category of layer %s", *category, layer)
}

// SequenceNamespaces lists every namespace the code issuer must know: one per
// layer plus assemblies and tooling lists.
func (d *Dictionary) SequenceNamespaces() []string {
	out := make([]string, 0, len(d.layers)+2)
	for _, l := range d.layers {
		out = append(out, l.Code)
	}
	return append(out, domain.NamespaceAssembly, domain.NamespaceToolingList)
}
