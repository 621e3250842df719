package codegen

import (
	"fmt"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/exprtype"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// generateAggregateProject handles a Project containing an aggregate
// with no enclosing GroupBy: one fold over the whole input, producing
// exactly one output row, generalising the teacher's GroupAggregator
// run with an implicit single group (see aggregator/group_aggregator.go).
func generateAggregateProject(ctx *semantics.Context, info *semantics.StreamInfo, p *plan.Project) (*semantics.StreamInfo, error) {
	layout, err := buildAccumulatorLayout(ctx, p.Columns)
	if err != nil {
		return nil, err
	}
	info.OpChain = info.OpChain.Append(opchain.Fold{Layout: layout})
	info.Keyed = false

	fields := make([]opchain.Field, 0, len(p.Columns))
	for i, c := range p.Columns {
		field, typ, err := aggregateField(ctx, c, i)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		ctx.AddResultColumn(field.Name, typ)
	}
	structName := ctx.NextStructName("Row")
	info.OpChain = info.OpChain.Append(opchain.Map{StructName: structName, Fields: fields})
	info.StructName = structName
	info.SetColumns(fieldsToColumns(fields))
	return info, nil
}

func aggregateField(ctx *semantics.Context, c plan.ProjCol, idx int) (opchain.Field, catalog.Type, error) {
	switch p := c.(type) {
	case plan.AggregateProj:
		typ, err := exprtype.Of(p.Agg, ctx)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		src, err := renderAggregateExpr(p.Agg)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		compiled, err := opchain.CompileValue(src)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, "", idx), Expr: compiled, Type: typ}, typ, nil

	case plan.ComplexValueProj:
		typ, err := exprtype.Of(p.Expr, ctx)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		src, err := renderAggregateExpr(p.Expr)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		compiled, err := opchain.CompileValue(src)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, "", idx), Expr: compiled, Type: typ}, typ, nil

	default:
		return aggregateFieldFallback(ctx, c, idx)
	}
}

// aggregateFieldFallback handles the projection columns that need no
// aggregate substitution (a string literal, a materialised scalar
// subquery, or a bare column outside a GroupBy) by reusing the
// simple-mode renderer; grouped key columns are handled by
// groupedField itself.
func aggregateFieldFallback(ctx *semantics.Context, c plan.ProjCol, idx int) (opchain.Field, catalog.Type, error) {
	switch c.(type) {
	case plan.ColumnProj, plan.StringLiteralProj, plan.SubqueryVecProj:
		return simpleField(ctx, c, idx)
	default:
		return opchain.Field{}, 0, compileerr.New(compileerr.InternalInvariant, "projection column %T reached aggregate-mode codegen", c)
	}
}

// renderAggregateExpr renders e as expr-lang source evaluated against
// a folded (accumulator-slot) environment rather than a plain record:
// every Aggregate leaf becomes its slot identifier (AVG becomes a
// division of its two co-located slots), and arithmetic composes those
// exactly as RenderExpr composes plain columns.
func renderAggregateExpr(e plan.Expr) (string, error) {
	switch v := e.(type) {
	case plan.Aggregate:
		col := ""
		if !v.Star {
			col = v.Arg.Column
		}
		if v.Func == plan.AggAvg {
			return fmt.Sprintf("(%s / %s)", opchain.AvgSumSlotID(col), opchain.AvgCountSlotID(col)), nil
		}
		return opchain.SlotID(v.Func, col), nil
	case plan.Literal:
		return opchain.RenderLiteral(v)
	case plan.Binary:
		left, err := renderAggregateExpr(v.Left)
		if err != nil {
			return "", err
		}
		right, err := renderAggregateExpr(v.Right)
		if err != nil {
			return "", err
		}
		op, err := opchain.BinOpSymbol(v.Op)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unrenderable aggregate-mode expression %T", e)
	}
}

// collectAggregates gathers every Aggregate leaf reachable from e.
func collectAggregates(e plan.Expr) []plan.Aggregate {
	switch v := e.(type) {
	case plan.Aggregate:
		return []plan.Aggregate{v}
	case plan.Binary:
		return append(collectAggregates(v.Left), collectAggregates(v.Right)...)
	default:
		return nil
	}
}

// buildAccumulatorLayout gathers every aggregate referenced anywhere in
// cols and assigns each one its symbolic fold slot(s); AVG claims two
// co-located slots (sum, count) sharing its argument column.
func buildAccumulatorLayout(ctx *semantics.Context, cols []plan.ProjCol) (*opchain.AccumulatorLayout, error) {
	layout := opchain.NewAccumulatorLayout()
	var aggs []plan.Aggregate
	for _, c := range cols {
		switch p := c.(type) {
		case plan.AggregateProj:
			aggs = append(aggs, p.Agg)
		case plan.ComplexValueProj:
			aggs = append(aggs, collectAggregates(p.Expr)...)
		}
	}
	for _, a := range aggs {
		col := ""
		if !a.Star {
			col = a.Arg.Column
		}
		switch a.Func {
		case plan.AggAvg:
			argType, err := ctx.ResolveColumn(a.Arg)
			if err != nil {
				return nil, err
			}
			layout.Add(opchain.AccumulatorSlot{ID: opchain.AvgSumSlotID(col), Func: plan.AggSum, Column: col, Type: argType.Type})
			layout.Add(opchain.AccumulatorSlot{ID: opchain.AvgCountSlotID(col), Func: plan.AggCount, Column: col, Type: catalog.Usize})
		case plan.AggCount:
			layout.Add(opchain.AccumulatorSlot{ID: opchain.SlotID(a.Func, col), Func: a.Func, Column: col, Type: catalog.Usize})
		default: // Sum, Min, Max
			argType, err := ctx.ResolveColumn(a.Arg)
			if err != nil {
				return nil, err
			}
			layout.Add(opchain.AccumulatorSlot{ID: opchain.SlotID(a.Func, col), Func: a.Func, Column: col, Type: argType.Type})
		}
	}
	return layout, nil
}
