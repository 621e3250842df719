package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

func joinedContext(t *testing.T) *Context {
	t.Helper()
	ctx := New(testCatalog())
	left := plan.NewScan(plan.NewTable("orders"), "s1", "o")
	right := plan.NewScan(plan.NewTable("customers"), "s2", "c")
	join := plan.NewJoin(left, right, []plan.JoinCond{
		{Left: plan.NewColumnRef("o", "customer_id"), Right: plan.NewColumnRef("c", "id")},
	}, plan.JoinInner)
	require.NoError(t, ctx.Populate(join))
	return ctx
}

func TestResolveColumn_Qualified(t *testing.T) {
	ctx := joinedContext(t)
	res, err := ctx.ResolveColumn(plan.NewColumnRef("o", "amount"))
	require.NoError(t, err)
	assert.Equal(t, catalog.F64, res.Type)
	assert.Equal(t, "s1", res.Stream.ID)
}

func TestResolveColumn_BareUnambiguous(t *testing.T) {
	ctx := joinedContext(t)
	res, err := ctx.ResolveColumn(plan.NewColumnRef("", "amount"))
	require.NoError(t, err)
	assert.Equal(t, "s1", res.Stream.ID)
}

func TestResolveColumn_BareAmbiguous(t *testing.T) {
	ctx := joinedContext(t)
	_, err := ctx.ResolveColumn(plan.NewColumnRef("", "id"))
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.AmbiguousColumn))
}

func TestResolveColumn_Unknown(t *testing.T) {
	ctx := joinedContext(t)
	_, err := ctx.ResolveColumn(plan.NewColumnRef("", "nope"))
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.UnknownColumn))
}

func TestResolveColumn_UnknownAlias(t *testing.T) {
	ctx := joinedContext(t)
	_, err := ctx.ResolveColumn(plan.NewColumnRef("z", "amount"))
	require.Error(t, err)
	assert.True(t, compileerr.Is(err, compileerr.UnknownTable))
}

func TestEnvKeyFor_QualifiesOnlyWhenJoined(t *testing.T) {
	single := New(testCatalog())
	require.NoError(t, single.Populate(plan.NewScan(plan.NewTable("orders"), "s1", "o")))
	key, err := single.EnvKeyFor(plan.NewColumnRef("", "amount"))
	require.NoError(t, err)
	assert.Equal(t, "amount", key)

	joined := joinedContext(t)
	key, err = joined.EnvKeyFor(plan.NewColumnRef("o", "amount"))
	require.NoError(t, err)
	assert.Equal(t, "amount_o", key)
}
