package codegen

import (
	"fmt"
	"strconv"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/exprtype"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// generateProject dispatches a Project whose input is not a GroupBy:
// SELECT * passes the current shape through unchanged; a projection
// containing an aggregate with no enclosing GroupBy is aggregate mode
// over the whole input (no key, a single output row); everything else
// is a plain field-by-field reshape. This mirrors the mode selection
// the teacher's LookFieldPlan performs ahead of group_by_plan.go.
func generateProject(ctx *semantics.Context, info *semantics.StreamInfo, p *plan.Project) (*semantics.StreamInfo, error) {
	switch {
	case plan.IsStar(p.Columns):
		return generateStarProject(ctx, info, p)
	case plan.HasAggregateProjection(p.Columns):
		return generateAggregateProject(ctx, info, p)
	default:
		return generateSimpleProject(ctx, info, p)
	}
}

func generateStarProject(ctx *semantics.Context, info *semantics.StreamInfo, p *plan.Project) (*semantics.StreamInfo, error) {
	for _, col := range info.Columns {
		name := col.Name
		if ctx.HasJoin {
			name = info.EnvKey(col.Name, true)
		}
		ctx.AddResultColumn(name, col.Type)
	}
	if p.Distinct {
		return appendDistinct(ctx, info)
	}
	return info, nil
}

func generateSimpleProject(ctx *semantics.Context, info *semantics.StreamInfo, p *plan.Project) (*semantics.StreamInfo, error) {
	fields := make([]opchain.Field, 0, len(p.Columns))
	for i, c := range p.Columns {
		field, typ, err := simpleField(ctx, c, i)
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

func simpleField(ctx *semantics.Context, c plan.ProjCol, idx int) (opchain.Field, catalog.Type, error) {
	switch p := c.(type) {
	case plan.ColumnProj:
		typ, err := exprtype.Of(p.Col, ctx)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		compiled, err := renderValue(ctx, p.Col)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, p.Col.Column, idx), Expr: compiled, Type: typ}, typ, nil

	case plan.ComplexValueProj:
		typ, err := exprtype.Of(p.Expr, ctx)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		compiled, err := renderValue(ctx, p.Expr)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, "", idx), Expr: compiled, Type: typ}, typ, nil

	case plan.StringLiteralProj:
		compiled, err := opchain.CompileValue(strconv.Quote(p.Value))
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, "", idx), Expr: compiled, Type: catalog.String}, catalog.String, nil

	case plan.SubqueryVecProj:
		lit, err := opchain.RenderLiteral(p.Scalar.Value)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		compiled, err := opchain.CompileValue(lit)
		if err != nil {
			return opchain.Field{}, 0, err
		}
		return opchain.Field{Name: outputName(p, "", idx), Expr: compiled, Type: p.Scalar.ValueType}, p.Scalar.ValueType, nil

	default:
		return opchain.Field{}, 0, compileerr.New(compileerr.InternalInvariant, "projection column %T reached simple-mode codegen", c)
	}
}

// outputName returns the projection's explicit alias, its source
// column name for a bare column reference, or a positional default for
// everything else.
func outputName(c plan.ProjCol, columnName string, idx int) string {
	if c.Alias() != "" {
		return c.Alias()
	}
	if columnName != "" {
		return columnName
	}
	return fmt.Sprintf("col%d", idx+1)
}

func fieldsToColumns(fields []opchain.Field) []catalog.Column {
	cols := make([]catalog.Column, len(fields))
	for i, f := range fields {
		cols[i] = catalog.Column{Name: f.Name, Type: f.Type}
	}
	return cols
}
