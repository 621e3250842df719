package subquery

import (
	"context"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

// Materializer walks a plan replacing every pending Subquery,
// InSubquery and Exists node with its resolved value.
type Materializer struct {
	Catalog  *catalog.Catalog
	Runtime  Runtime
	MaxDepth int
}

// Materialize returns a copy of n with every nested subquery resolved.
func (m *Materializer) Materialize(ctx context.Context, n plan.Node) (plan.Node, error) {
	return m.node(ctx, n, 0)
}

func (m *Materializer) node(ctx context.Context, n plan.Node, depth int) (plan.Node, error) {
	switch t := n.(type) {
	case *plan.Table:
		return t, nil

	case *plan.Scan:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewScan(input, t.Stream, t.Alias), nil

	case *plan.Filter:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		pred, err := m.cond(ctx, t.Pred, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewFilter(input, pred), nil

	case *plan.Project:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		cols, err := m.projCols(ctx, t.Columns, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewProject(input, cols, t.Distinct), nil

	case *plan.Join:
		left, err := m.node(ctx, t.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := m.node(ctx, t.Right, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewJoin(left, right, t.Conds, t.Kind), nil

	case *plan.GroupBy:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		having, err := m.cond(ctx, t.Having, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewGroupBy(input, t.Keys, having), nil

	case *plan.OrderBy:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewOrderBy(input, t.Items), nil

	case *plan.Limit:
		input, err := m.node(ctx, t.Input, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewLimit(input, t.Count, t.Offset), nil

	default:
		return nil, compileerr.New(compileerr.InternalInvariant, "unsupported plan node %T reached materialisation", n)
	}
}

func (m *Materializer) projCols(ctx context.Context, cols []plan.ProjCol, depth int) ([]plan.ProjCol, error) {
	out := make([]plan.ProjCol, len(cols))
	for i, c := range cols {
		switch p := c.(type) {
		case plan.SubqueryProj:
			rows, columns, err := m.run(ctx, p.Plan, depth)
			if err != nil {
				return nil, err
			}
			scalar, err := scalarResult(rows, columns, p.Pos())
			if err != nil {
				return nil, err
			}
			out[i] = plan.NewSubqueryVecProj(scalar, p.AliasStr)
		case plan.ComplexValueProj:
			e, err := m.expr(ctx, p.Expr, depth)
			if err != nil {
				return nil, err
			}
			out[i] = plan.NewComplexValueProj(e, p.AliasStr)
		default:
			out[i] = c
		}
	}
	return out, nil
}

func (m *Materializer) expr(ctx context.Context, e plan.Expr, depth int) (plan.Expr, error) {
	switch v := e.(type) {
	case plan.Subquery:
		rows, columns, err := m.run(ctx, v.Plan, depth)
		if err != nil {
			return nil, err
		}
		return scalarResult(rows, columns, v.Pos())
	case plan.Binary:
		left, err := m.expr(ctx, v.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := m.expr(ctx, v.Right, depth)
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

func (m *Materializer) cond(ctx context.Context, c plan.Cond, depth int) (plan.Cond, error) {
	if c == nil {
		return nil, nil
	}
	switch t := c.(type) {
	case plan.Comparison:
		left, err := m.expr(ctx, t.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := m.expr(ctx, t.Right, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewComparison(left, t.Op, right), nil
	case plan.NullCheck:
		target, err := m.expr(ctx, t.Target, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewNullCheck(target, t.Not), nil
	case plan.Between:
		target, err := m.expr(ctx, t.Target, depth)
		if err != nil {
			return nil, err
		}
		lo, err := m.expr(ctx, t.Lo, depth)
		if err != nil {
			return nil, err
		}
		hi, err := m.expr(ctx, t.Hi, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewBetween(target, lo, hi), nil
	case plan.InCond:
		target, err := m.expr(ctx, t.Target, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewInCond(target, t.Values, t.Not), nil
	case plan.BoolLit:
		return t, nil
	case plan.InSubquery:
		target, err := m.expr(ctx, t.Target, depth)
		if err != nil {
			return nil, err
		}
		rows, columns, err := m.run(ctx, t.Plan, depth)
		if err != nil {
			return nil, err
		}
		if len(columns) != 1 {
			return nil, compileerr.At(compileerr.ScalarSubqueryCardinality, t.Pos(),
				"IN subquery must project exactly one column, got %d", len(columns))
		}
		lits := make([]plan.Literal, 0, len(rows))
		for _, row := range rows {
			lit, err := coerceLiteral(row[columns[0].Name], columns[0].Type)
			if err != nil {
				return nil, err
			}
			lits = append(lits, lit)
		}
		return plan.NewInCond(target, plan.NewInList(sortDedupeLiterals(lits)), t.Not), nil
	case plan.Exists:
		rows, _, err := m.run(ctx, t.Plan, depth)
		if err != nil {
			return nil, err
		}
		exists := len(rows) > 0
		if t.Not {
			exists = !exists
		}
		return plan.NewBoolLit(exists), nil
	case plan.And:
		left, err := m.cond(ctx, t.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := m.cond(ctx, t.Right, depth)
		if err != nil {
			return nil, err
		}
		return plan.NewAnd(left, right), nil
	case plan.Or:
		left, err := m.cond(ctx, t.Left, depth)
		if err != nil {
			return nil, err
		}
		right, err := m.cond(ctx, t.Right, depth)
		if err != nil {
			return nil, err
		}
		o := plan.NewOr(left, right)
		o.Parenthesised = t.Parenthesised
		return o, nil
	default:
		return nil, compileerr.New(compileerr.InternalInvariant, "unsupported condition node %T reached materialisation", c)
	}
}

func (m *Materializer) run(ctx context.Context, p plan.Node, depth int) ([]Row, []catalog.Column, error) {
	if depth+1 > m.MaxDepth {
		return nil, nil, compileerr.New(compileerr.SubqueryCompilation, "subquery nesting exceeds max depth %d", m.MaxDepth)
	}
	resolved, err := m.node(ctx, p, depth+1)
	if err != nil {
		return nil, nil, err
	}
	rows, columns, err := m.Runtime.RunAndCollect(ctx, resolved, m.Catalog)
	if err != nil {
		return nil, nil, compileerr.Wrap(compileerr.SubqueryCompilation, 0, err, "running nested subquery")
	}
	return rows, columns, nil
}

func scalarResult(rows []Row, columns []catalog.Column, pos compileerr.Pos) (plan.SubqueryScalar, error) {
	if len(columns) != 1 {
		return plan.SubqueryScalar{}, compileerr.At(compileerr.ScalarSubqueryCardinality, pos,
			"scalar subquery must project exactly one column, got %d", len(columns))
	}
	if len(rows) != 1 {
		return plan.SubqueryScalar{}, compileerr.At(compileerr.ScalarSubqueryCardinality, pos,
			"scalar subquery must return exactly one row, got %d", len(rows))
	}
	lit, err := coerceLiteral(rows[0][columns[0].Name], columns[0].Type)
	if err != nil {
		return plan.SubqueryScalar{}, err
	}
	return plan.NewSubqueryScalar(lit, columns[0].Type), nil
}
