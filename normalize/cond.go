// Package normalize reshapes a freshly built plan into the canonical
// form codegen expects: AND trees are left-associated so a fold over
// conjuncts can process them iteratively, BETWEEN is lowered to an
// explicit range, any Scan left without a user alias gets one
// synthesised, join equi-conditions are deduplicated, and a HAVING
// clause is checked against its GROUP BY keys before codegen ever sees
// it.
package normalize

import (
	"github.com/relstream/compiler/plan"
)

// NormalizeCond lowers BETWEEN, recurses into any nested subquery
// plans reachable from the condition's expressions, left-associates
// AND chains, and marks every OR beneath an AND Parenthesised; OR
// nodes keep their original shape.
func NormalizeCond(c plan.Cond) (plan.Cond, error) {
	if c == nil {
		return nil, nil
	}
	lowered, err := lowerBetween(c)
	if err != nil {
		return nil, err
	}
	return reshape(lowered)
}

func lowerBetween(c plan.Cond) (plan.Cond, error) {
	switch t := c.(type) {
	case plan.Between:
		target, err := NormalizeExpr(t.Target)
		if err != nil {
			return nil, err
		}
		lo, err := NormalizeExpr(t.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := NormalizeExpr(t.Hi)
		if err != nil {
			return nil, err
		}
		return plan.NewAnd(
			plan.NewComparison(target, plan.CmpGte, lo),
			plan.NewComparison(target, plan.CmpLte, hi),
		), nil
	case plan.Comparison:
		left, err := NormalizeExpr(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := NormalizeExpr(t.Right)
		if err != nil {
			return nil, err
		}
		return plan.NewComparison(left, t.Op, right), nil
	case plan.NullCheck:
		target, err := NormalizeExpr(t.Target)
		if err != nil {
			return nil, err
		}
		return plan.NewNullCheck(target, t.Not), nil
	case plan.InCond:
		target, err := NormalizeExpr(t.Target)
		if err != nil {
			return nil, err
		}
		return plan.NewInCond(target, t.Values, t.Not), nil
	case plan.BoolLit:
		return t, nil
	case plan.InSubquery:
		target, err := NormalizeExpr(t.Target)
		if err != nil {
			return nil, err
		}
		sub, err := Plan(t.Plan)
		if err != nil {
			return nil, err
		}
		return plan.NewInSubquery(target, sub, t.Not), nil
	case plan.Exists:
		sub, err := Plan(t.Plan)
		if err != nil {
			return nil, err
		}
		return plan.NewExists(sub, t.Not), nil
	case plan.And:
		left, err := lowerBetween(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerBetween(t.Right)
		if err != nil {
			return nil, err
		}
		return plan.NewAnd(left, right), nil
	case plan.Or:
		left, err := lowerBetween(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerBetween(t.Right)
		if err != nil {
			return nil, err
		}
		o := plan.NewOr(left, right)
		o.Parenthesised = t.Parenthesised
		return o, nil
	default:
		return c, nil
	}
}

// reshape left-associates AND chains and marks any OR found directly
// beneath an AND as parenthesised, since that nesting would otherwise
// be lost once the tree is rendered to flat boolean source text.
func reshape(c plan.Cond) (plan.Cond, error) {
	switch t := c.(type) {
	case plan.And:
		left, err := reshape(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := reshape(t.Right)
		if err != nil {
			return nil, err
		}
		conjuncts := append(flattenAnd(left), flattenAnd(right)...)
		for i, cj := range conjuncts {
			if orc, ok := cj.(plan.Or); ok && !orc.Parenthesised {
				orc.Parenthesised = true
				conjuncts[i] = orc
			}
		}
		return rebuildAnd(conjuncts), nil
	case plan.Or:
		left, err := reshape(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := reshape(t.Right)
		if err != nil {
			return nil, err
		}
		o := plan.NewOr(left, right)
		o.Parenthesised = t.Parenthesised
		return o, nil
	default:
		return c, nil
	}
}

func flattenAnd(c plan.Cond) []plan.Cond {
	if and, ok := c.(plan.And); ok {
		return append(flattenAnd(and.Left), flattenAnd(and.Right)...)
	}
	return []plan.Cond{c}
}

func rebuildAnd(conjuncts []plan.Cond) plan.Cond {
	acc := conjuncts[0]
	for _, c := range conjuncts[1:] {
		acc = plan.NewAnd(acc, c)
	}
	return acc
}

// NormalizeExpr recurses into e looking for a nested subquery plan to
// normalize in turn; every other expression shape passes through
// unchanged since only relational structure needs reshaping here.
func NormalizeExpr(e plan.Expr) (plan.Expr, error) {
	switch v := e.(type) {
	case plan.Subquery:
		np, err := Plan(v.Plan)
		if err != nil {
			return nil, err
		}
		return plan.NewSubquery(np), nil
	case plan.Binary:
		left, err := NormalizeExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := NormalizeExpr(v.Right)
		if err != nil {
			return nil, err
		}
		nb := plan.NewBinary(v.Op, left, right)
		nb.Parenthesised = v.Parenthesised
		return nb, nil
	default:
		return e, nil
	}
}
