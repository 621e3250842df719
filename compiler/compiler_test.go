package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/datasource"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/subquery"
)

// noSubqueries fails the test immediately if Compile ever needs the
// runtime collaborator; every scenario below has none.
type noSubqueries struct{ t *testing.T }

func (n noSubqueries) RunAndCollect(context.Context, plan.Node, *catalog.Catalog) ([]subquery.Row, []catalog.Column, error) {
	n.t.Fatal("unexpected subquery execution")
	return nil, nil, nil
}

func tCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Register(catalog.NewSchema("T",
		catalog.Column{Name: "a", Type: catalog.I64},
		catalog.Column{Name: "b", Type: catalog.F64},
		catalog.Column{Name: "c", Type: catalog.String},
	), datasource.StaticHandle("T"))
	return cat
}

// TestCompile_SimpleProjectionWithExpression exercises spec.md §8
// scenario 1: SELECT a + 1 AS a1, b FROM T.
func TestCompile_SimpleProjectionWithExpression(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	proj := plan.NewProject(scan, []plan.ProjCol{
		plan.NewComplexValueProj(plan.NewBinary(plan.OpAdd, plan.NewColumnRef("", "a"), plan.NewIntLiteral(1)), "a1"),
		plan.NewColumnProj(plan.NewColumnRef("", "b"), ""),
	}, false)

	result, err := Compile(context.Background(), proj, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Schema.Columns, 2)
	assert.Equal(t, "a1", result.Schema.Columns[0].Name)
	assert.Equal(t, catalog.I64, result.Schema.Columns[0].Type)
	assert.Equal(t, "b", result.Schema.Columns[1].Name)
	assert.Equal(t, catalog.F64, result.Schema.Columns[1].Type)

	require.NotEmpty(t, result.Pipeline.Chain)
	_, ok := result.Pipeline.Chain[0].(opchain.Source)
	assert.True(t, ok, "chain should be seeded with a Source op")
}

// TestCompile_AggregateWithoutGroupBy exercises spec.md §8 scenario 3:
// SELECT COUNT(*) AS n, AVG(b) AS m FROM T.
func TestCompile_AggregateWithoutGroupBy(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	proj := plan.NewProject(scan, []plan.ProjCol{
		plan.NewAggregateProj(plan.NewCountStar(), "n"),
		plan.NewAggregateProj(plan.NewAggregate(plan.AggAvg, plan.NewColumnRef("", "b")), "m"),
	}, false)

	result, err := Compile(context.Background(), proj, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Schema.Columns, 2)
	assert.Equal(t, "n", result.Schema.Columns[0].Name)
	assert.Equal(t, catalog.Usize, result.Schema.Columns[0].Type)
	assert.Equal(t, "m", result.Schema.Columns[1].Name)
	assert.Equal(t, catalog.F64, result.Schema.Columns[1].Type)

	var sawFold bool
	for _, op := range result.Pipeline.Chain {
		if _, ok := op.(opchain.Fold); ok {
			sawFold = true
		}
	}
	assert.True(t, sawFold, "aggregate mode should emit a Fold op")
}

// TestCompile_NullSafeFilter exercises spec.md §8 scenario 2: SELECT a
// FROM T WHERE b > 2.0.
func TestCompile_NullSafeFilter(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	pred := plan.NewComparison(plan.NewColumnRef("", "b"), plan.CmpGt, plan.NewFloatLiteral(2.0))
	filtered := plan.NewFilter(scan, pred)
	proj := plan.NewProject(filtered, []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("", "a"), ""),
	}, false)

	result, err := Compile(context.Background(), proj, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Schema.Columns, 1)
	assert.Equal(t, "a", result.Schema.Columns[0].Name)

	var sawFilter bool
	for _, op := range result.Pipeline.Chain {
		if _, ok := op.(opchain.Filter); ok {
			sawFilter = true
		}
	}
	assert.True(t, sawFilter)
}

func TestLoadOptions_PartialDocumentMergesOverDefaults(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader("maxSubqueryDepth: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, opts.MaxSubqueryDepth)
	assert.True(t, opts.NullsFirstDesc, "unset fields keep the default")
}

// TestCompile_GroupByFloatKey exercises spec.md §8 scenario 4: SELECT
// b, SUM(a) AS s FROM T GROUP BY b. A float group key must come back
// out of the fold lifted/lowered transparently to the caller.
func TestCompile_GroupByFloatKey(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	gb := plan.NewGroupBy(scan, []plan.ColumnRef{plan.NewColumnRef("", "b")}, nil)
	proj := plan.NewProject(gb, []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("", "b"), ""),
		plan.NewAggregateProj(plan.NewAggregate(plan.AggSum, plan.NewColumnRef("", "a")), "s"),
	}, false)

	result, err := Compile(context.Background(), proj, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Schema.Columns, 2)
	assert.Equal(t, "b", result.Schema.Columns[0].Name)
	assert.Equal(t, catalog.F64, result.Schema.Columns[0].Type)
	assert.Equal(t, "s", result.Schema.Columns[1].Name)
	assert.Equal(t, catalog.I64, result.Schema.Columns[1].Type)

	var sawFold bool
	for _, op := range result.Pipeline.Chain {
		if f, ok := op.(opchain.Fold); ok {
			sawFold = true
			assert.True(t, f.KeyColumns[0].Lifted, "float group key must be ordered-float lifted")
		}
	}
	assert.True(t, sawFold)
}

// TestCompile_HavingRejectsUngroupedColumn exercises spec.md §4.5:
// HAVING referencing a column outside both GROUP BY keys and
// aggregates must fail with NonGroupedReference.
func TestCompile_HavingRejectsUngroupedColumn(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	having := plan.NewComparison(plan.NewColumnRef("", "a"), plan.CmpGt, plan.NewIntLiteral(0))
	gb := plan.NewGroupBy(scan, []plan.ColumnRef{plan.NewColumnRef("", "b")}, having)
	proj := plan.NewProject(gb, []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("", "b"), ""),
	}, false)

	_, err := Compile(context.Background(), proj, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.NonGroupedReference))
}

// TestCompile_JoinAutoAlias exercises spec.md §8 scenario 5: SELECT
// T.a, U.d FROM T JOIN U ON T.a = U.a, checking the auto-alias naming
// of the joined output struct's fields.
func TestCompile_JoinAutoAlias(t *testing.T) {
	cat := tCatalog()
	cat.Register(catalog.NewSchema("U",
		catalog.Column{Name: "a", Type: catalog.I64},
		catalog.Column{Name: "d", Type: catalog.I64},
	), datasource.StaticHandle("U"))

	left := plan.NewScan(plan.NewTable("T"), "T", "T")
	right := plan.NewScan(plan.NewTable("U"), "U", "U")
	join := plan.NewJoin(left, right, []plan.JoinCond{
		{Left: plan.NewColumnRef("T", "a"), Right: plan.NewColumnRef("U", "a")},
	}, plan.JoinInner)
	proj := plan.NewProject(join, []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("T", "a"), ""),
		plan.NewColumnProj(plan.NewColumnRef("U", "d"), ""),
	}, false)

	result, err := Compile(context.Background(), proj, cat, noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Schema.Columns, 2)
	assert.Equal(t, "a_T", result.Schema.Columns[0].Name)
	assert.Equal(t, "d_U", result.Schema.Columns[1].Name)

	var sawJoin bool
	for _, op := range result.Pipeline.Chain {
		if _, ok := op.(opchain.Join); ok {
			sawJoin = true
		}
	}
	assert.True(t, sawJoin)
}

// TestCompile_DistinctOrderLimit covers §4.11: DISTINCT, ORDER BY and
// LIMIT/OFFSET composed in one plan.
func TestCompile_DistinctOrderLimit(t *testing.T) {
	scan := plan.NewScan(plan.NewTable("T"), "T", "")
	proj := plan.NewProject(scan, []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("", "a"), ""),
	}, true)
	ob := plan.NewOrderBy(proj, []plan.OrderItem{{Col: plan.NewColumnRef("", "a"), Desc: false}})
	lim := plan.NewLimit(ob, 10, 5)

	result, err := Compile(context.Background(), lim, tCatalog(), noSubqueries{t}, DefaultOptions())
	require.NoError(t, err)

	var sawDistinct, sawSort bool
	for _, op := range result.Pipeline.Chain {
		switch o := op.(type) {
		case opchain.Distinct:
			sawDistinct = true
		case opchain.Sort:
			sawSort = true
			require.NotNil(t, o.Limit)
			assert.Equal(t, 10, *o.Limit)
			require.NotNil(t, o.Offset)
			assert.Equal(t, 5, *o.Offset)
		}
	}
	assert.True(t, sawDistinct)
	assert.True(t, sawSort)
}
