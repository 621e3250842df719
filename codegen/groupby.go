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

// generateGroupByProject handles a Project directly over a GroupBy:
// the pair is generated jointly because the fold's accumulator layout
// depends on which aggregates the enclosing Project actually asks for,
// something the GroupBy node alone does not know. Mirrors the
// teacher's GroupByPlan followed by LookFieldPlan, folded into one
// step since this IR keeps the projection list on Project rather than
// denormalised onto GroupBy.
func generateGroupByProject(ctx *semantics.Context, p *plan.Project, gb *plan.GroupBy) (*semantics.StreamInfo, error) {
	info, err := generateNode(ctx, gb.Input)
	if err != nil {
		return nil, err
	}

	keyEnv := make(map[string]string, len(gb.Keys))
	keyCols := make([]opchain.KeyColumn, len(gb.Keys))
	for i, k := range gb.Keys {
		envKey, err := ctx.EnvKeyFor(k)
		if err != nil {
			return nil, err
		}
		typ, err := exprtype.Of(k, ctx)
		if err != nil {
			return nil, err
		}
		keyCols[i] = opchain.KeyColumn{EnvKey: envKey, Type: typ, Lifted: typ == catalog.F64}
		keyEnv[k.Column] = envKey
	}

	layout, err := buildAccumulatorLayout(ctx, p.Columns)
	if err != nil {
		return nil, err
	}
	info.OpChain = info.OpChain.Append(opchain.Fold{KeyColumns: keyCols, Layout: layout})
	info.Keyed = true

	if gb.Having != nil {
		src, err := renderGroupedCond(gb.Having, keyEnv)
		if err != nil {
			return nil, err
		}
		compiled, err := opchain.CompilePredicate(src)
		if err != nil {
			return nil, err
		}
		info.OpChain = info.OpChain.Append(opchain.Filter{Program: compiled, Kind: opchain.FilterHaving})
	}

	fields := make([]opchain.Field, 0, len(p.Columns))
	for i, c := range p.Columns {
		field, typ, err := groupedField(ctx, c, keyEnv, i)
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
	if p.Distinct {
		return appendDistinct(ctx, info)
	}
	return info, nil
}

func groupedField(ctx *semantics.Context, c plan.ProjCol, keyEnv map[string]string, idx int) (opchain.Field, catalog.Type, error) {
	switch p := c.(type) {
	case plan.ColumnProj:
		typ, err := exprtype.Of(p.Col, ctx)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		envKey, ok := keyEnv[p.Col.Column]
		if !ok {
			return opchain.Field{}, 0, compileerr.At(compileerr.NonGroupedReference, p.Pos(),
				"column %q is neither grouped nor aggregated", p.Col.Column)
		}
		compiled, err := opchain.CompileValue(envKey)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, p.Col.Column, idx), Expr: compiled, Type: typ}, typ, nil

	case plan.AggregateProj, plan.ComplexValueProj:
		return aggregateField(ctx, c, idx)

	default:
		return aggregateFieldFallback(ctx, c, idx)
	}
}

// renderGroupedCond renders a HAVING condition evaluated against the
// post-fold (key-tuple, accumulator-tuple) shape: a bare column
// resolves through keyEnv, and any Aggregate resolves to its fold slot
// exactly as renderAggregateExpr does for the final Map.
func renderGroupedCond(c plan.Cond, keyEnv map[string]string) (string, error) {
	switch v := c.(type) {
	case plan.Comparison:
		left, err := renderGroupedExpr(v.Left, keyEnv)
		if err != nil {
			return "", err
		}
		right, err := renderGroupedExpr(v.Right, keyEnv)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s == nil || %s == nil) ? false : (%s %s %s)", left, right, left, v.Op.String(), right), nil
	case plan.NullCheck:
		target, err := renderGroupedExpr(v.Target, keyEnv)
		if err != nil {
			return "", err
		}
		if v.Not {
			return fmt.Sprintf("is_not_null(%s)", target), nil
		}
		return fmt.Sprintf("is_null(%s)", target), nil
	case plan.Between:
		target, err := renderGroupedExpr(v.Target, keyEnv)
		if err != nil {
			return "", err
		}
		lo, err := renderGroupedExpr(v.Lo, keyEnv)
		if err != nil {
			return "", err
		}
		hi, err := renderGroupedExpr(v.Hi, keyEnv)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s >= %s && %s <= %s)", target, lo, target, hi), nil
	case plan.InCond:
		target, err := renderGroupedExpr(v.Target, keyEnv)
		if err != nil {
			return "", err
		}
		set := "["
		for i, lit := range v.Values.Values {
			if i > 0 {
				set += ", "
			}
			s, err := opchain.RenderLiteral(lit)
			if err != nil {
				return "", err
			}
			set += s
		}
		set += "]"
		if v.Not {
			return fmt.Sprintf("!(%s in %s)", target, set), nil
		}
		return fmt.Sprintf("(%s in %s)", target, set), nil
	case plan.BoolLit:
		if v.Value {
			return "true", nil
		}
		return "false", nil
	case plan.And:
		left, err := renderGroupedCond(v.Left, keyEnv)
		if err != nil {
			return "", err
		}
		right, err := renderGroupedCond(v.Right, keyEnv)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) && (%s)", left, right), nil
	case plan.Or:
		left, err := renderGroupedCond(v.Left, keyEnv)
		if err != nil {
			return "", err
		}
		right, err := renderGroupedCond(v.Right, keyEnv)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) || (%s)", left, right), nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unrenderable grouped condition node %T", c)
	}
}

func renderGroupedExpr(e plan.Expr, keyEnv map[string]string) (string, error) {
	switch v := e.(type) {
	case plan.ColumnRef:
		envKey, ok := keyEnv[v.Column]
		if !ok {
			return "", compileerr.At(compileerr.NonGroupedReference, v.Pos(),
				"column %q is neither grouped nor aggregated", v.Column)
		}
		return envKey, nil
	case plan.Literal:
		return opchain.RenderLiteral(v)
	case plan.Aggregate:
		return renderAggregateExpr(v)
	case plan.Binary:
		left, err := renderGroupedExpr(v.Left, keyEnv)
		if err != nil {
			return "", err
		}
		right, err := renderGroupedExpr(v.Right, keyEnv)
		if err != nil {
			return "", err
		}
		op, err := opchain.BinOpSymbol(v.Op)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s == nil || %s == nil) ? nil : (%s %s %s))", left, right, left, op, right), nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unrenderable grouped expression %T", e)
	}
}
