package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMakeSignature_OrdersByLayerRankThenCode(t *testing.T) {
	entries := []SignatureEntry{
		{AssetCode: "SCREW_00000005", LayerCode: "SCREW"},
		{AssetCode: "INSERT_00000009", LayerCode: "INSERT"},
		{AssetCode: "HOLDER_00000002", LayerCode: "HOLDER"},
	}
	require.Equal(t, "HOLDER_00000002_INSERT_00000009_SCREW_00000005", MakeSignature(entries))
}

func TestMakeSignature_SameLayerSortsByCode(t *testing.T) {
	entries := []SignatureEntry{
		{AssetCode: "INSERT_00000003", LayerCode: "INSERT"},
		{AssetCode: "INSERT_00000001", LayerCode: "INSERT"},
		{AssetCode: "SUB_HOLDER_00000001", LayerCode: "SUB_HOLDER"},
	}
	require.Equal(t, "SUB_HOLDER_00000001_INSERT_00000001_INSERT_00000003", MakeSignature(entries))
}

func TestMakeSignature_UnknownAndMissingLayersSortLast(t *testing.T) {
	entries := []SignatureEntry{
		{AssetCode: "X_1", LayerCode: ""},
		{AssetCode: "Y_1", LayerCode: "MYSTERY"},
		{AssetCode: "ACCESSORY_00000001", LayerCode: "ACCESSORY"},
	}
	require.Equal(t, "ACCESSORY_00000001_Y_1_X_1", MakeSignature(entries))
}

func TestMakeSignature_SkipsBlankCodes(t *testing.T) {
	entries := []SignatureEntry{
		{AssetCode: "", LayerCode: "HOLDER"},
		{AssetCode: "  ", LayerCode: "INSERT"},
		{AssetCode: "SCREW_00000001", LayerCode: "SCREW"},
	}
	require.Equal(t, "SCREW_00000001", MakeSignature(entries))
}

func TestMakeSignature_Empty(t *testing.T) {
	require.Equal(t, "", MakeSignature(nil))
	require.Equal(t, "", MakeSignature([]SignatureEntry{}))
}

func TestMakeSignature_DoesNotMutateInput(t *testing.T) {
	entries := []SignatureEntry{
		{AssetCode: "SCREW_00000005", LayerCode: "SCREW"},
		{AssetCode: "HOLDER_00000002", LayerCode: "HOLDER"},
	}
	_ = MakeSignature(entries)
	require.Equal(t, "SCREW_00000005", entries[0].AssetCode)
}

func TestLayerRank(t *testing.T) {
	require.Equal(t, 0, LayerRank("HOLDER"))
	require.Equal(t, 1, LayerRank("SUB_HOLDER"))
	require.Equal(t, 6, LayerRank(" ACCESSORY "))
	require.Equal(t, rankUnknownLayer, LayerRank("NOPE"))
	require.Equal(t, rankMissingLayer, LayerRank(""))
}

func TestSignatureOf_UsesItemCodes(t *testing.T) {
	items := []*AssemblyItem{
		{AssetCode: "INSERT_00000001", LayerCode: "INSERT"},
		{AssetCode: "HOLDER_00000001", LayerCode: "HOLDER"},
	}
	require.Equal(t, "HOLDER_00000001_INSERT_00000001", SignatureOf(items))
}

// Any permutation of the same entries yields the same signature.
func TestMakeSignature_OrderIndependent(t *testing.T) {
	layers := []string{"HOLDER", "SUB_HOLDER", "TOOL_BODY", "INSERT", "SOLID_TOOL", "SCREW", "ACCESSORY", "OTHER", ""}

	rapid.Check(t, func(r *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(r, "n")
		entries := make([]SignatureEntry, n)
		for i := range entries {
			entries[i] = SignatureEntry{
				LayerCode: rapid.SampledFrom(layers).Draw(r, "layer"),
				AssetCode: rapid.StringMatching(`[A-Z]{0,3}_?[0-9]{0,4}`).Draw(r, "code"),
			}
		}
		want := MakeSignature(entries)

		perm := rapid.Permutation(entries).Draw(r, "perm")
		require.Equal(r, want, MakeSignature(perm))

		nonBlank := 0
		for _, e := range entries {
			if strings.TrimSpace(e.AssetCode) != "" {
				nonBlank++
			}
		}
		if nonBlank == 0 {
			require.Empty(r, want)
		}
	})
}
