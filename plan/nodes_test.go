package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStar(t *testing.T) {
	t.Run("single star column is select-star", func(t *testing.T) {
		cols := []ProjCol{NewColumnProj(NewColumnRef("", "*"), "")}
		assert.True(t, IsStar(cols))
	})

	t.Run("qualified star is not select-star", func(t *testing.T) {
		cols := []ProjCol{NewColumnProj(NewColumnRef("t", "*"), "")}
		assert.False(t, IsStar(cols))
	})

	t.Run("star alongside another column is not select-star", func(t *testing.T) {
		cols := []ProjCol{
			NewColumnProj(NewColumnRef("", "*"), ""),
			NewColumnProj(NewColumnRef("", "a"), ""),
		}
		assert.False(t, IsStar(cols))
	})

	t.Run("empty projection is not select-star", func(t *testing.T) {
		assert.False(t, IsStar(nil))
	})
}

func TestHasAggregateProjection(t *testing.T) {
	t.Run("direct aggregate is detected", func(t *testing.T) {
		cols := []ProjCol{NewAggregateProj(NewAggregate(AggSum, NewColumnRef("", "a")), "s")}
		assert.True(t, HasAggregateProjection(cols))
	})

	t.Run("aggregate nested inside arithmetic is detected", func(t *testing.T) {
		agg := NewAggregate(AggSum, NewColumnRef("", "a"))
		expr := NewBinary(OpAdd, agg, NewIntLiteral(1))
		cols := []ProjCol{NewComplexValueProj(expr, "s1")}
		assert.True(t, HasAggregateProjection(cols))
	})

	t.Run("plain columns have no aggregate", func(t *testing.T) {
		cols := []ProjCol{NewColumnProj(NewColumnRef("", "a"), "")}
		assert.False(t, HasAggregateProjection(cols))
	})
}

func TestNodePositionsAreUnique(t *testing.T) {
	a := NewTable("t")
	b := NewTable("u")
	require.NotEqual(t, a.Pos(), b.Pos())
}

func TestJoinKindString(t *testing.T) {
	assert.Equal(t, "INNER", JoinInner.String())
	assert.Equal(t, "LEFT", JoinLeft.String())
	assert.Equal(t, "OUTER", JoinOuter.String())
}
