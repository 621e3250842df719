package codegen

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/semantics"
)

// appendDistinct appends Distinct to info's chain, wrapped in a
// FloatLift/FloatLower pair whenever the current record carries any
// float column. Distinct dedupes by whole-record equality rather than
// a declared key tuple, so every float field — not just ones mentioned
// in a key — needs the ordered-float adapter to give NaN and ordinary
// floats alike a total, map-key-safe equality.
func appendDistinct(ctx *semantics.Context, info *semantics.StreamInfo) (*semantics.StreamInfo, error) {
	var floatFields []string
	for _, col := range info.Columns {
		if col.Type == catalog.F64 {
			floatFields = append(floatFields, col.Name)
		}
	}
	if len(floatFields) > 0 {
		info.OpChain = info.OpChain.Append(opchain.FloatLift{Fields: floatFields})
	}
	info.OpChain = info.OpChain.Append(opchain.Distinct{})
	if len(floatFields) > 0 {
		info.OpChain = info.OpChain.Append(opchain.FloatLower{Fields: floatFields})
	}
	return info, nil
}
