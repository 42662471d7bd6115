package testutil

import "github.com/zjrosen/toolasset/internal/inventory/domain"

func strPtr(s string) *string { return &s }

// PartOption configures a part during builder setup.
type PartOption func(*domain.NewPart)

// Category sets the category code.
func Category(code string) PartOption {
	return func(p *domain.NewPart) { p.CategoryCode = strPtr(code) }
}

// FreeText sets the free-text category.
func FreeText(text string) PartOption {
	return func(p *domain.NewPart) { p.CategoryFreeText = strPtr(text) }
}

// PartNo sets the maker part number. Defaults to the alias.
func PartNo(no string) PartOption {
	return func(p *domain.NewPart) { p.PartNo = no }
}

// Maker sets the maker.
func Maker(maker string) PartOption {
	return func(p *domain.NewPart) { p.Maker = maker }
}

// DisplayName sets the display name.
func DisplayName(name string) PartOption {
	return func(p *domain.NewPart) { p.DisplayName = strPtr(name) }
}

// itemData references a part by builder alias.
type itemData struct {
	partAlias string
	qty       float64
	role      *string
}

type assemblyData struct {
	alias string
	input domain.NewAssembly
	items []itemData
}

// AssemblyOption configures an assembly during builder setup.
type AssemblyOption func(*assemblyData)

// Named sets the display name. Without it the assembly is named after its
// signature.
func Named(name string) AssemblyOption {
	return func(a *assemblyData) { a.input.DisplayName = strPtr(name) }
}

// Item attaches the part registered under partAlias.
func Item(partAlias string, qty float64, role string) AssemblyOption {
	return func(a *assemblyData) {
		it := itemData{partAlias: partAlias, qty: qty}
		if role != "" {
			it.role = strPtr(role)
		}
		a.items = append(a.items, it)
	}
}

// toolData references an assembly by builder alias.
type toolData struct {
	toolNo        string
	assemblyAlias string
	qty           float64
}

type listData struct {
	alias string
	title string
	note  *string
	tools []toolData
}

// ListOption configures a tooling list during builder setup.
type ListOption func(*listData)

// Note sets the list note.
func Note(note string) ListOption {
	return func(l *listData) { l.note = strPtr(note) }
}

// Tool mounts the assembly registered under assemblyAlias at toolNo.
func Tool(toolNo, assemblyAlias string, qty float64) ListOption {
	return func(l *listData) {
		l.tools = append(l.tools, toolData{toolNo: toolNo, assemblyAlias: assemblyAlias, qty: qty})
	}
}
