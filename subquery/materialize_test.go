package subquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

type fakeRuntime struct {
	rows    []Row
	columns []catalog.Column
	err     error
}

func (f *fakeRuntime) RunAndCollect(ctx context.Context, p plan.Node, cat *catalog.Catalog) ([]Row, []catalog.Column, error) {
	return f.rows, f.columns, f.err
}

func testCat() *catalog.Catalog {
	cat := catalog.New()
	cat.Register(catalog.NewSchema("orders",
		catalog.Column{Name: "id", Type: catalog.I64},
		catalog.Column{Name: "amount", Type: catalog.F64},
	), nil)
	return cat
}

func TestMaterialize_ScalarSubquery(t *testing.T) {
	rt := &fakeRuntime{
		rows:    []Row{{"max_amount": 42.5}},
		columns: []catalog.Column{{Name: "max_amount", Type: catalog.F64}},
	}
	m := &Materializer{Catalog: testCat(), Runtime: rt, MaxDepth: 4}

	scan := plan.NewScan(plan.NewTable("orders"), "s1", "o")
	sub := plan.NewSubquery(plan.NewTable("orders"))
	cmp := plan.NewComparison(plan.NewColumnRef("", "amount"), plan.CmpEq, sub)
	filter := plan.NewFilter(scan, cmp)

	out, err := m.Materialize(context.Background(), filter)
	require.NoError(t, err)

	f := out.(*plan.Filter)
	c := f.Pred.(plan.Comparison)
	scalar, ok := c.Right.(plan.SubqueryScalar)
	require.True(t, ok)
	assert.Equal(t, 42.5, scalar.Value.Value)
	assert.Equal(t, catalog.F64, scalar.ValueType)
}

func TestMaterialize_ScalarSubqueryCardinalityViolation(t *testing.T) {
	rt := &fakeRuntime{
		rows:    []Row{{"amount": 1.0}, {"amount": 2.0}},
		columns: []catalog.Column{{Name: "amount", Type: catalog.F64}},
	}
	m := &Materializer{Catalog: testCat(), Runtime: rt, MaxDepth: 4}

	sub := plan.NewSubquery(plan.NewTable("orders"))
	cmp := plan.NewComparison(plan.NewColumnRef("", "amount"), plan.CmpEq, sub)
	filter := plan.NewFilter(plan.NewScan(plan.NewTable("orders"), "s1", "o"), cmp)

	_, err := m.Materialize(context.Background(), filter)
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.ScalarSubqueryCardinality))
}

func TestMaterialize_InSubquery(t *testing.T) {
	rt := &fakeRuntime{
		rows:    []Row{{"id": int64(3)}, {"id": int64(1)}, {"id": int64(3)}},
		columns: []catalog.Column{{Name: "id", Type: catalog.I64}},
	}
	m := &Materializer{Catalog: testCat(), Runtime: rt, MaxDepth: 4}

	inSub := plan.NewInSubquery(plan.NewColumnRef("", "id"), plan.NewTable("orders"), false)
	filter := plan.NewFilter(plan.NewScan(plan.NewTable("orders"), "s1", "o"), inSub)

	out, err := m.Materialize(context.Background(), filter)
	require.NoError(t, err)

	f := out.(*plan.Filter)
	in := f.Pred.(plan.InCond)
	require.Len(t, in.Values.Values, 2)
	assert.Equal(t, int64(1), in.Values.Values[0].Value)
	assert.Equal(t, int64(3), in.Values.Values[1].Value)
}

func TestMaterialize_Exists(t *testing.T) {
	rt := &fakeRuntime{rows: nil, columns: []catalog.Column{{Name: "id", Type: catalog.I64}}}
	m := &Materializer{Catalog: testCat(), Runtime: rt, MaxDepth: 4}

	exists := plan.NewExists(plan.NewTable("orders"), false)
	filter := plan.NewFilter(plan.NewScan(plan.NewTable("orders"), "s1", "o"), exists)

	out, err := m.Materialize(context.Background(), filter)
	require.NoError(t, err)
	f := out.(*plan.Filter)
	lit := f.Pred.(plan.BoolLit)
	assert.False(t, lit.Value)
}

func TestMaterialize_MaxDepthExceeded(t *testing.T) {
	rt := &fakeRuntime{}
	m := &Materializer{Catalog: testCat(), Runtime: rt, MaxDepth: 0}

	sub := plan.NewSubquery(plan.NewTable("orders"))
	cmp := plan.NewComparison(plan.NewColumnRef("", "amount"), plan.CmpEq, sub)
	filter := plan.NewFilter(plan.NewScan(plan.NewTable("orders"), "s1", "o"), cmp)

	_, err := m.Materialize(context.Background(), filter)
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.SubqueryCompilation))
}
