package subquery

import (
	"sort"

	"github.com/spf13/cast"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

// coerceLiteral tolerantly converts a runtime-returned scalar to the
// plan.Literal matching typ, the same permissive numeric/string
// coercion the teacher's GroupByOp applies when reading raw values out
// of an arbitrary input map (see operator/group_by_operator.go).
func coerceLiteral(raw any, typ catalog.Type) (plan.Literal, error) {
	switch typ {
	case catalog.I64, catalog.Usize:
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return plan.Literal{}, compileerr.New(compileerr.TypeMismatch, "coerce %v to integer: %v", raw, err)
		}
		return plan.NewIntLiteral(v), nil
	case catalog.F64:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return plan.Literal{}, compileerr.New(compileerr.TypeMismatch, "coerce %v to float: %v", raw, err)
		}
		return plan.NewFloatLiteral(v), nil
	case catalog.String:
		v, err := cast.ToStringE(raw)
		if err != nil {
			return plan.Literal{}, compileerr.New(compileerr.TypeMismatch, "coerce %v to string: %v", raw, err)
		}
		return plan.NewStringLiteral(v), nil
	case catalog.Bool:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return plan.Literal{}, compileerr.New(compileerr.TypeMismatch, "coerce %v to bool: %v", raw, err)
		}
		return plan.NewBoolLiteral(v), nil
	default:
		return plan.Literal{}, compileerr.New(compileerr.InternalInvariant, "unknown scalar type tag %d", typ)
	}
}

// sortDedupeLiterals orders a materialised IN-list deterministically
// and drops duplicates, so the generated membership test is stable
// across compilations of the same query.
func sortDedupeLiterals(lits []plan.Literal) []plan.Literal {
	seen := make(map[any]bool, len(lits))
	out := make([]plan.Literal, 0, len(lits))
	for _, l := range lits {
		if seen[l.Value] {
			continue
		}
		seen[l.Value] = true
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return literalLess(out[i], out[j])
	})
	return out
}

func literalLess(a, b plan.Literal) bool {
	switch a.Kind {
	case plan.LitInt:
		return a.Value.(int64) < b.Value.(int64)
	case plan.LitFloat:
		return a.Value.(float64) < b.Value.(float64)
	case plan.LitString:
		return a.Value.(string) < b.Value.(string)
	case plan.LitBool:
		return !a.Value.(bool) && b.Value.(bool)
	default:
		return false
	}
}
