package normalize

import "github.com/relstream/compiler/plan"

// Plan rewrites n into its canonical form: predicates normalized,
// BETWEEN lowered, HAVING checked against its GROUP BY keys, join
// equi-conditions deduplicated, and every Scan given a concrete alias.
func Plan(n plan.Node) (plan.Node, error) {
	switch t := n.(type) {
	case *plan.Table:
		return t, nil

	case *plan.Scan:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		alias := t.Alias
		if alias == "" {
			alias = t.Stream
		}
		return plan.NewScan(input, t.Stream, alias), nil

	case *plan.Filter:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		pred, err := NormalizeCond(t.Pred)
		if err != nil {
			return nil, err
		}
		return plan.NewFilter(input, pred), nil

	case *plan.Project:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		cols, err := normalizeProjCols(t.Columns)
		if err != nil {
			return nil, err
		}
		return plan.NewProject(input, cols, t.Distinct), nil

	case *plan.Join:
		left, err := Plan(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := Plan(t.Right)
		if err != nil {
			return nil, err
		}
		return plan.NewJoin(left, right, dedupeJoinConds(t.Conds), t.Kind), nil

	case *plan.GroupBy:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		having, err := NormalizeCond(t.Having)
		if err != nil {
			return nil, err
		}
		if err := ValidateHaving(having, t.Keys); err != nil {
			return nil, err
		}
		return plan.NewGroupBy(input, t.Keys, having), nil

	case *plan.OrderBy:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		return plan.NewOrderBy(input, t.Items), nil

	case *plan.Limit:
		input, err := Plan(t.Input)
		if err != nil {
			return nil, err
		}
		return plan.NewLimit(input, t.Count, t.Offset), nil

	default:
		return nil, planInvariant(n)
	}
}

func normalizeProjCols(cols []plan.ProjCol) ([]plan.ProjCol, error) {
	out := make([]plan.ProjCol, len(cols))
	for i, col := range cols {
		switch c := col.(type) {
		case plan.ComplexValueProj:
			e, err := NormalizeExpr(c.Expr)
			if err != nil {
				return nil, err
			}
			out[i] = plan.NewComplexValueProj(e, c.AliasStr)
		case plan.SubqueryProj:
			sub, err := Plan(c.Plan)
			if err != nil {
				return nil, err
			}
			out[i] = plan.NewSubqueryProj(sub, c.AliasStr)
		default:
			out[i] = col
		}
	}
	return out, nil
}

// dedupeJoinConds drops repeated equi-conditions, keeping first-seen
// order — a plan built programmatically may list the same key pair
// twice without it being a second, independent condition.
func dedupeJoinConds(conds []plan.JoinCond) []plan.JoinCond {
	seen := make(map[[4]string]bool, len(conds))
	out := make([]plan.JoinCond, 0, len(conds))
	for _, c := range conds {
		key := [4]string{c.Left.Table, c.Left.Column, c.Right.Table, c.Right.Column}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func planInvariant(n plan.Node) error {
	return invariantf("unsupported plan node %T reached normalization", n)
}
