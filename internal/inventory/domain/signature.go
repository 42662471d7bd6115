package domain

import (
	"cmp"
	"slices"
	"strings"
)

// SignatureSeparator joins asset codes in an assembly signature.
const SignatureSeparator = "_"

// layerRanks orders layers from the spindle outward.
var layerRanks = map[string]int{
	"HOLDER":     0,
	"SUB_HOLDER": 1,
	"TOOL_BODY":  2,
	"INSERT":     3,
	"SOLID_TOOL": 4,
	"SCREW":      5,
	"ACCESSORY":  6,
}

const (
	rankUnknownLayer = 998
	rankMissingLayer = 999
)

// LayerRank returns the signature sort rank of a layer code.
func LayerRank(layer string) int {
	layer = strings.TrimSpace(layer)
	if layer == "" {
		return rankMissingLayer
	}
	if r, ok := layerRanks[layer]; ok {
		return r
	}
	return rankUnknownLayer
}

// SignatureEntry is the minimum an item needs to take part in a signature.
type SignatureEntry struct {
	AssetCode string
	LayerCode string
}

// MakeSignature derives the canonical name of a set of parts: entries are
// ordered by (layer rank, asset code) and the non-blank codes joined with "_".
// The result does not depend on input order. No entries yields "".
func MakeSignature(entries []SignatureEntry) string {
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b SignatureEntry) int {
		if c := cmp.Compare(LayerRank(a.LayerCode), LayerRank(b.LayerCode)); c != 0 {
			return c
		}
		return cmp.Compare(a.AssetCode, b.AssetCode)
	})

	codes := make([]string, 0, len(ordered))
	for _, e := range ordered {
		if strings.TrimSpace(e.AssetCode) == "" {
			continue
		}
		codes = append(codes, e.AssetCode)
	}
	return strings.Join(codes, SignatureSeparator)
}

// SignatureOf derives the signature of joined assembly items.
func SignatureOf(items []*AssemblyItem) string {
	entries := make([]SignatureEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, SignatureEntry{AssetCode: it.AssetCode, LayerCode: it.LayerCode})
	}
	return MakeSignature(entries)
}
