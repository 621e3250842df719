package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/plan"
)

func col(name string) plan.ColumnRef { return plan.NewColumnRef("", name) }

func TestLowerBetween(t *testing.T) {
	b := plan.NewBetween(col("age"), plan.NewIntLiteral(1), plan.NewIntLiteral(10))
	got, err := NormalizeCond(b)
	require.NoError(t, err)

	and, ok := got.(plan.And)
	require.True(t, ok)
	lo, ok := and.Left.(plan.Comparison)
	require.True(t, ok)
	assert.Equal(t, plan.CmpGte, lo.Op)
	hi, ok := and.Right.(plan.Comparison)
	require.True(t, ok)
	assert.Equal(t, plan.CmpLte, hi.Op)
}

func TestLeftAssociateAnd(t *testing.T) {
	a := plan.NewComparison(col("a"), plan.CmpEq, plan.NewIntLiteral(1))
	b := plan.NewComparison(col("b"), plan.CmpEq, plan.NewIntLiteral(2))
	c := plan.NewComparison(col("c"), plan.CmpEq, plan.NewIntLiteral(3))

	rightLeaning := plan.NewAnd(a, plan.NewAnd(b, c))
	got, err := NormalizeCond(rightLeaning)
	require.NoError(t, err)

	outer, ok := got.(plan.And)
	require.True(t, ok)
	_, ok = outer.Right.(plan.Comparison)
	assert.True(t, ok, "outer.Right should be the last conjunct, not a nested And")

	inner, ok := outer.Left.(plan.And)
	require.True(t, ok)
	_, ok = inner.Left.(plan.Comparison)
	assert.True(t, ok)
}

func TestOrUnderAndGetsParenthesised(t *testing.T) {
	a := plan.NewComparison(col("a"), plan.CmpEq, plan.NewIntLiteral(1))
	or := plan.NewOr(
		plan.NewComparison(col("b"), plan.CmpEq, plan.NewIntLiteral(2)),
		plan.NewComparison(col("c"), plan.CmpEq, plan.NewIntLiteral(3)),
	)
	and := plan.NewAnd(a, or)

	got, err := NormalizeCond(and)
	require.NoError(t, err)

	outer := got.(plan.And)
	orc, ok := outer.Right.(plan.Or)
	require.True(t, ok)
	assert.True(t, orc.Parenthesised)
}
