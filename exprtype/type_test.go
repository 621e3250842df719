package exprtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

func testContext(t *testing.T) *semantics.Context {
	t.Helper()
	cat := catalog.New()
	cat.Register(catalog.NewSchema("orders",
		catalog.Column{Name: "id", Type: catalog.I64},
		catalog.Column{Name: "amount", Type: catalog.F64},
		catalog.Column{Name: "qty", Type: catalog.I64},
		catalog.Column{Name: "label", Type: catalog.String},
	), nil)
	ctx := semantics.New(cat)
	require.NoError(t, ctx.Populate(plan.NewScan(plan.NewTable("orders"), "s1", "o")))
	return ctx
}

func TestOf_Literals(t *testing.T) {
	ctx := testContext(t)
	cases := []struct {
		name string
		expr plan.Expr
		want catalog.Type
	}{
		{"int", plan.NewIntLiteral(1), catalog.I64},
		{"float", plan.NewFloatLiteral(1.5), catalog.F64},
		{"string", plan.NewStringLiteral("x"), catalog.String},
		{"bool", plan.NewBoolLiteral(true), catalog.Bool},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Of(tc.expr, ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOf_ColumnRef(t *testing.T) {
	ctx := testContext(t)
	got, err := Of(plan.NewColumnRef("", "amount"), ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, got)
}

func TestOf_DivisionAlwaysFloat(t *testing.T) {
	ctx := testContext(t)
	expr := plan.NewBinary(plan.OpDiv, plan.NewColumnRef("", "qty"), plan.NewIntLiteral(2))
	got, err := Of(expr, ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, got)
}

func TestOf_IntArithmeticStaysInt(t *testing.T) {
	ctx := testContext(t)
	expr := plan.NewBinary(plan.OpAdd, plan.NewColumnRef("", "qty"), plan.NewIntLiteral(1))
	got, err := Of(expr, ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.I64, got)
}

func TestOf_MixedFloatPromotes(t *testing.T) {
	ctx := testContext(t)
	expr := plan.NewBinary(plan.OpMul, plan.NewColumnRef("", "qty"), plan.NewColumnRef("", "amount"))
	got, err := Of(expr, ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, got)
}

func TestOf_NonNumericArithmeticErrors(t *testing.T) {
	ctx := testContext(t)
	expr := plan.NewBinary(plan.OpAdd, plan.NewColumnRef("", "label"), plan.NewIntLiteral(1))
	_, err := Of(expr, ctx)
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.NonNumericArith))
}

func TestOf_Aggregates(t *testing.T) {
	ctx := testContext(t)

	countType, err := Of(plan.NewAggregate(plan.AggCount, plan.NewColumnRef("", "id")), ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Usize, countType)

	countStarType, err := Of(plan.NewCountStar(), ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Usize, countStarType)

	avgType, err := Of(plan.NewAggregate(plan.AggAvg, plan.NewColumnRef("", "qty")), ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, avgType)

	sumType, err := Of(plan.NewAggregate(plan.AggSum, plan.NewColumnRef("", "amount")), ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, sumType)
}

func TestOf_SubqueryUnmaterialisedIsInvariantViolation(t *testing.T) {
	ctx := testContext(t)
	_, err := Of(plan.NewSubquery(plan.NewTable("orders")), ctx)
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.InternalInvariant))
}
