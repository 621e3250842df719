package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
)

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Register(catalog.NewSchema("orders",
		catalog.Column{Name: "id", Type: catalog.I64},
		catalog.Column{Name: "customer_id", Type: catalog.I64},
		catalog.Column{Name: "amount", Type: catalog.F64},
	), nil)
	cat.Register(catalog.NewSchema("customers",
		catalog.Column{Name: "id", Type: catalog.I64},
		catalog.Column{Name: "name", Type: catalog.String},
	), nil)
	return cat
}

func TestRegisterStream_Conflicts(t *testing.T) {
	ctx := New(testCatalog())

	_, err := ctx.RegisterStream("s1", "o", "orders", nil)
	require.NoError(t, err)

	t.Run("duplicate stream id", func(t *testing.T) {
		_, err := ctx.RegisterStream("s1", "", "orders", nil)
		require.Error(t, err)
		assert.True(t, compileerr.Is(err, compileerr.StreamConflict))
	})

	t.Run("duplicate alias", func(t *testing.T) {
		_, err := ctx.RegisterStream("s2", "o", "orders", nil)
		require.Error(t, err)
		assert.True(t, compileerr.Is(err, compileerr.AliasConflict))
	})
}

func TestStreamByAliasOrID(t *testing.T) {
	ctx := New(testCatalog())
	_, err := ctx.RegisterStream("s1", "o", "orders", nil)
	require.NoError(t, err)

	byAlias, ok := ctx.StreamByAliasOrID("o")
	require.True(t, ok)
	assert.Equal(t, "s1", byAlias.ID)

	byID, ok := ctx.StreamByAliasOrID("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", byID.ID)

	_, ok = ctx.StreamByAliasOrID("missing")
	assert.False(t, ok)
}

func TestEnvKey(t *testing.T) {
	s := newStreamInfo("s1", "o", "orders", nil)
	assert.Equal(t, "amount", s.EnvKey("amount", false))
	assert.Equal(t, "amount_o", s.EnvKey("amount", true))
}
