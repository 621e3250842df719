// Package codegen lowers a normalised, subquery-materialised plan into
// one opchain.Chain per surviving stream plus the plan's final result
// schema. It is the direct analogue of the teacher's planner package
// (planner/select_statement_plan.go and its per-clause plans), walking
// the same Table -> Filter -> GroupBy -> projection -> Limit -> OrderBy
// shape, but emitting a typed operator-AST instead of mutating a
// running StreamSqlContext in place.
package codegen

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/exprtype"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// Pipeline is the compiled op chain for the plan's driving stream: the
// one stream every other stream has been folded or joined into by the
// time the walk reaches the plan's root.
type Pipeline struct {
	StreamID string
	Chain    opchain.Chain
}

// ResultSchema is the plan's final, ordered output column list.
type ResultSchema struct {
	Columns []catalog.Column
}

// Generate walks n (already populated into ctx, normalised, and
// subquery-materialised) and returns its compiled pipeline and result
// schema.
func Generate(ctx *semantics.Context, n plan.Node) (Pipeline, ResultSchema, error) {
	info, err := generateNode(ctx, n)
	if err != nil {
		return Pipeline{}, ResultSchema{}, err
	}
	cols := make([]catalog.Column, len(ctx.ResultColumns))
	for i, c := range ctx.ResultColumns {
		cols[i] = catalog.Column{Name: c.Name, Type: c.Type}
	}
	return Pipeline{StreamID: info.ID, Chain: info.OpChain}, ResultSchema{Columns: cols}, nil
}

func generateNode(ctx *semantics.Context, n plan.Node) (*semantics.StreamInfo, error) {
	switch t := n.(type) {
	case *plan.Table:
		return seedSource(ctx, t.Name, t.Name)

	case *plan.Scan:
		if table, ok := t.Input.(*plan.Table); ok {
			return seedSource(ctx, t.Stream, table.Name)
		}
		// A derived FROM source (subquery-as-table): its subtree builds
		// its own op chain ending at the subtree's own stream. Populate
		// registered an empty placeholder under t.Stream/t.Alias for
		// column resolution against this Scan's output; fold the
		// subtree's finished shape into that placeholder so downstream
		// lookups by t.Stream/t.Alias see the derived stream's columns.
		innerInfo, err := generateNode(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		placeholder, ok := ctx.Stream(t.Stream)
		if !ok {
			return nil, compileerr.New(compileerr.InternalInvariant, "derived stream %q not registered before codegen", t.Stream)
		}
		placeholder.OpChain = innerInfo.OpChain
		placeholder.StructName = innerInfo.StructName
		placeholder.SetColumns(innerInfo.Columns)
		placeholder.Keyed = innerInfo.Keyed
		return placeholder, nil

	case *plan.Filter:
		info, err := generateNode(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		compiled, err := renderPredicate(ctx, t.Pred)
		if err != nil {
			return nil, err
		}
		info.OpChain = info.OpChain.Append(opchain.Filter{Program: compiled, Kind: opchain.FilterRow})
		return info, nil

	case *plan.Project:
		if gb, ok := t.Input.(*plan.GroupBy); ok {
			return generateGroupByProject(ctx, t, gb)
		}
		info, err := generateNode(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return generateProject(ctx, info, t)

	case *plan.Join:
		return generateJoin(ctx, t)

	case *plan.GroupBy:
		// Reached only when a GroupBy has no enclosing Project, i.e. its
		// keys and Having are the entire output; treat it as grouping by
		// key with no projected aggregate.
		return generateGroupByProject(ctx, plan.NewProject(t, keysAsProjCols(t.Keys), false), t)

	case *plan.OrderBy:
		info, err := generateNode(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return generateOrderBy(ctx, info, t)

	case *plan.Limit:
		if ob, ok := t.Input.(*plan.OrderBy); ok {
			input, err := generateNode(ctx, ob.Input)
			if err != nil {
				return nil, err
			}
			return generateOrderByLimit(ctx, input, ob, t)
		}
		info, err := generateNode(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		info.OpChain = info.OpChain.Append(opchain.Limit{Count: t.Count, Offset: t.Offset})
		return info, nil

	default:
		return nil, compileerr.New(compileerr.InternalInvariant, "unsupported plan node %T reached codegen", n)
	}
}

// seedSource looks up the stream Populate already registered under id
// and appends a Source op the first time codegen visits it, named by
// the table's catalog data-source handle (or the table name when the
// catalog holds no handle for it); a stream that has already been
// seeded (e.g. the second leg of a self-join) is returned unchanged.
func seedSource(ctx *semantics.Context, id, sourceName string) (*semantics.StreamInfo, error) {
	info, ok := ctx.Stream(id)
	if !ok {
		return nil, compileerr.New(compileerr.InternalInvariant, "stream %q not registered before codegen", id)
	}
	if len(info.OpChain) == 0 {
		name := sourceName
		if h, err := ctx.Catalog.Source(sourceName); err == nil && h != nil {
			name = h.Name()
		}
		info.OpChain = info.OpChain.Append(opchain.Source{Name: name})
		info.StructName = ctx.NextStructName("Row")
	}
	return info, nil
}

func keysAsProjCols(keys []plan.ColumnRef) []plan.ProjCol {
	cols := make([]plan.ProjCol, len(keys))
	for i, k := range keys {
		cols[i] = plan.NewColumnProj(k, "")
	}
	return cols
}

func generateOrderBy(ctx *semantics.Context, info *semantics.StreamInfo, ob *plan.OrderBy) (*semantics.StreamInfo, error) {
	keys, err := sortKeys(ctx, ob.Items)
	if err != nil {
		return nil, err
	}
	info.OpChain = info.OpChain.Append(opchain.Sort{Keys: keys})
	return info, nil
}

func generateOrderByLimit(ctx *semantics.Context, info *semantics.StreamInfo, ob *plan.OrderBy, lim *plan.Limit) (*semantics.StreamInfo, error) {
	keys, err := sortKeys(ctx, ob.Items)
	if err != nil {
		return nil, err
	}
	count, offset := lim.Count, lim.Offset
	info.OpChain = info.OpChain.Append(opchain.Sort{Keys: keys, Limit: &count, Offset: &offset})
	return info, nil
}

func sortKeys(ctx *semantics.Context, items []plan.OrderItem) ([]opchain.SortKey, error) {
	keys := make([]opchain.SortKey, len(items))
	for i, item := range items {
		envKey, err := ctx.EnvKeyFor(item.Col)
		if err != nil {
			return nil, err
		}
		typ, err := exprtype.Of(item.Col, ctx)
		if err != nil {
			return nil, err
		}
		nullsFirst := item.Desc
		if item.NullsFirst != nil {
			nullsFirst = *item.NullsFirst
		}
		keys[i] = opchain.SortKey{EnvKey: envKey, Desc: item.Desc, NullsFirst: nullsFirst, Type: typ}
	}
	return keys, nil
}
