package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTestDB_Migrated(t *testing.T) {
	db := NewTestDB(t)

	require.Equal(t, 9, Count(t, db, "id_sequences"))
	require.Equal(t, 0, Count(t, db, "parts"))
}

func TestBuilder_WithPart(t *testing.T) {
	env := NewServices(t)

	codes := NewBuilder(t, env.Services).
		WithPart("em", "SOLID_TOOL", Category("END_MILL")).
		Build()

	require.Equal(t, "SOLID_TOOL_00000001", codes["em"])

	p, err := env.Services.Parts.GetPart(context.Background(), codes["em"])
	require.NoError(t, err)
	require.Equal(t, "em", p.PartNo)
	require.Equal(t, "ACME", p.Maker)
	require.Equal(t, env.Clock.Now(), p.CreatedAt)
}

func TestPreset_MillingSetup(t *testing.T) {
	env := NewServices(t)

	codes := NewBuilder(t, env.Services).WithMillingSetup().Build()

	require.Len(t, codes, 9)
	require.Equal(t, 6, Count(t, env.DB, "parts"))
	require.Equal(t, 2, Count(t, env.DB, "assemblies"))
	require.Equal(t, 7, Count(t, env.DB, "assembly_items"))
	require.Equal(t, 2, Count(t, env.DB, "tooling_list_items"))

	asm, err := env.Services.Assemblies.GetAssembly(context.Background(), codes["asm-endmill"])
	require.NoError(t, err)
	require.Equal(t, codes["holder"]+"_"+codes["collet"]+"_"+codes["endmill"], asm.DisplayName)

	face, err := env.Services.Assemblies.GetAssembly(context.Background(), codes["asm-face"])
	require.NoError(t, err)
	require.Equal(t, "face mill 63", face.DisplayName)
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	start := c.Now()
	c.Advance(90)
	require.Equal(t, start.Add(90), c.Now())
}
