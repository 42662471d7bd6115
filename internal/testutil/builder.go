package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/toolasset/internal/inventory/application"
	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

type partData struct {
	alias string
	input domain.NewPart
}

// Codes maps builder aliases to the codes issued for them.
type Codes map[string]string

// Builder accumulates test data and creates it through the services, so
// codes are issued and audit entries written as in production.
type Builder struct {
	t          testing.TB
	svc        *application.Services
	parts      []partData
	assemblies []assemblyData
	lists      []listData
}

// NewBuilder creates a builder over the given services.
func NewBuilder(t testing.TB, svc *application.Services) *Builder {
	t.Helper()
	return &Builder{t: t, svc: svc}
}

// WithPart adds a part in layer. PartNo defaults to the alias and Maker to
// "ACME".
func (b *Builder) WithPart(alias, layer string, opts ...PartOption) *Builder {
	in := domain.NewPart{LayerCode: layer, PartNo: alias, Maker: "ACME"}
	for _, opt := range opts {
		opt(&in)
	}
	b.parts = append(b.parts, partData{alias: alias, input: in})
	return b
}

// WithAssembly adds an assembly.
func (b *Builder) WithAssembly(alias string, opts ...AssemblyOption) *Builder {
	a := assemblyData{alias: alias}
	for _, opt := range opts {
		opt(&a)
	}
	b.assemblies = append(b.assemblies, a)
	return b
}

// WithToolingList adds a tooling list.
func (b *Builder) WithToolingList(alias, title string, opts ...ListOption) *Builder {
	l := listData{alias: alias, title: title}
	for _, opt := range opts {
		opt(&l)
	}
	b.lists = append(b.lists, l)
	return b
}

// Build creates everything in dependency order: parts, assemblies, lists.
func (b *Builder) Build() Codes {
	b.t.Helper()
	ctx := context.Background()
	codes := Codes{}

	for _, p := range b.parts {
		code, err := b.svc.Parts.AddPart(ctx, p.input)
		require.NoError(b.t, err, "part %s", p.alias)
		codes[p.alias] = code
	}

	for _, a := range b.assemblies {
		items := make([]domain.AssemblyItemInput, 0, len(a.items))
		for _, it := range a.items {
			partCode, ok := codes[it.partAlias]
			require.True(b.t, ok, "unknown part alias %s", it.partAlias)
			items = append(items, domain.AssemblyItemInput{PartAssetCode: partCode, Qty: it.qty, Role: it.role})
		}
		code, err := b.svc.Assemblies.ComposeAssembly(ctx, a.input, items)
		require.NoError(b.t, err, "assembly %s", a.alias)
		codes[a.alias] = code
	}

	for _, l := range b.lists {
		code, err := b.svc.ToolingLists.AddToolingList(ctx, l.title, l.note)
		require.NoError(b.t, err, "tooling list %s", l.alias)
		codes[l.alias] = code
		for _, tool := range l.tools {
			asmCode, ok := codes[tool.assemblyAlias]
			require.True(b.t, ok, "unknown assembly alias %s", tool.assemblyAlias)
			_, err := b.svc.ToolingLists.AddToolingListItem(ctx, code, domain.ToolingListItemInput{
				AssemblyCode: asmCode,
				ToolNo:       tool.toolNo,
				Qty:          tool.qty,
			})
			require.NoError(b.t, err, "tool %s on %s", tool.toolNo, l.alias)
		}
	}
	return codes
}
