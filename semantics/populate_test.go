package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/plan"
)

func TestPopulate_SingleTable(t *testing.T) {
	ctx := New(testCatalog())
	p := plan.NewScan(plan.NewTable("orders"), "s1", "o")

	require.NoError(t, ctx.Populate(p))
	assert.False(t, ctx.HasJoin)

	s, ok := ctx.StreamByAliasOrID("o")
	require.True(t, ok)
	assert.True(t, s.Has("amount"))
}

func TestPopulate_Join(t *testing.T) {
	ctx := New(testCatalog())
	left := plan.NewScan(plan.NewTable("orders"), "s1", "o")
	right := plan.NewScan(plan.NewTable("customers"), "s2", "c")
	join := plan.NewJoin(left, right, []plan.JoinCond{
		{Left: plan.NewColumnRef("o", "customer_id"), Right: plan.NewColumnRef("c", "id")},
	}, plan.JoinInner)

	require.NoError(t, ctx.Populate(join))
	assert.True(t, ctx.HasJoin)

	o, ok := ctx.StreamByAliasOrID("o")
	require.True(t, ok)
	assert.True(t, o.Has("customer_id"))

	c, ok := ctx.StreamByAliasOrID("c")
	require.True(t, ok)
	assert.True(t, c.Has("name"))
}

func TestPopulate_DerivedStreamPlaceholder(t *testing.T) {
	ctx := New(testCatalog())
	sub := plan.NewProject(plan.NewTable("orders"), []plan.ProjCol{
		plan.NewColumnProj(plan.NewColumnRef("", "id"), ""),
	}, false)
	scan := plan.NewScan(sub, "derived1", "d")

	require.NoError(t, ctx.Populate(scan))
	s, ok := ctx.StreamByAliasOrID("d")
	require.True(t, ok)
	assert.Empty(t, s.Columns)
}

func TestPopulate_UnknownTable(t *testing.T) {
	ctx := New(testCatalog())
	p := plan.NewScan(plan.NewTable("nope"), "s1", "")
	err := ctx.Populate(p)
	require.Error(t, err)
}
