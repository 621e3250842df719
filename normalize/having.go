package normalize

import (
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

// ValidateHaving checks that every column HAVING references outside an
// aggregate call also appears in keys — an aggregate's own argument is
// exempt, since aggregating over an ungrouped column is the entire
// point, but a bare comparison against one is not.
func ValidateHaving(having plan.Cond, keys []plan.ColumnRef) error {
	if having == nil {
		return nil
	}
	for _, ref := range collectCondColumns(having) {
		if !columnInKeys(ref, keys) {
			return compileerr.At(compileerr.NonGroupedReference, ref.Pos(),
				"HAVING references ungrouped column %q", ref.Column)
		}
	}
	return nil
}

func columnInKeys(ref plan.ColumnRef, keys []plan.ColumnRef) bool {
	for _, k := range keys {
		if k.Column == ref.Column && (!ref.Qualified() || !k.Qualified() || k.Table == ref.Table) {
			return true
		}
	}
	return false
}

func collectCondColumns(c plan.Cond) []plan.ColumnRef {
	switch t := c.(type) {
	case plan.Comparison:
		return append(collectExprColumns(t.Left), collectExprColumns(t.Right)...)
	case plan.NullCheck:
		return collectExprColumns(t.Target)
	case plan.Between:
		out := collectExprColumns(t.Target)
		out = append(out, collectExprColumns(t.Lo)...)
		out = append(out, collectExprColumns(t.Hi)...)
		return out
	case plan.InCond:
		return collectExprColumns(t.Target)
	case plan.And:
		return append(collectCondColumns(t.Left), collectCondColumns(t.Right)...)
	case plan.Or:
		return append(collectCondColumns(t.Left), collectCondColumns(t.Right)...)
	default:
		return nil
	}
}

// collectExprColumns gathers bare ColumnRef leaves, skipping an
// Aggregate's own argument.
func collectExprColumns(e plan.Expr) []plan.ColumnRef {
	switch v := e.(type) {
	case plan.ColumnRef:
		return []plan.ColumnRef{v}
	case plan.Binary:
		return append(collectExprColumns(v.Left), collectExprColumns(v.Right)...)
	default:
		return nil
	}
}
