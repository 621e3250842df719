package semantics

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

// Populate walks p and registers every stream it introduces: a Scan
// over a catalog table pulls that table's schema in directly; a Scan
// over anything else (a derived table produced by a subquery in FROM
// position) registers a placeholder with no columns yet, which codegen
// fills in when it lowers that Scan's subtree. A Join marks the
// context as join-bearing before walking both sides, which is what
// later auto-alias and ambiguity rules key off.
func (c *Context) Populate(p plan.Node) error {
	return c.populateNode(p)
}

func (c *Context) populateNode(n plan.Node) error {
	switch t := n.(type) {
	case *plan.Table:
		return c.registerTableStream(t.Name, t.Name, "")
	case *plan.Scan:
		return c.populateScan(t)
	case *plan.Filter:
		return c.populateNode(t.Input)
	case *plan.Project:
		return c.populateNode(t.Input)
	case *plan.GroupBy:
		return c.populateNode(t.Input)
	case *plan.OrderBy:
		return c.populateNode(t.Input)
	case *plan.Limit:
		return c.populateNode(t.Input)
	case *plan.Join:
		c.HasJoin = true
		if err := c.populateNode(t.Left); err != nil {
			return err
		}
		return c.populateNode(t.Right)
	default:
		return compileerr.New(compileerr.InternalInvariant, "unsupported plan node %T reached stream discovery", n)
	}
}

func (c *Context) populateScan(s *plan.Scan) error {
	if s.Stream == "" {
		return compileerr.New(compileerr.InternalInvariant, "scan node carries no stream name")
	}
	if table, ok := s.Input.(*plan.Table); ok {
		return c.registerTableStreamAs(s.Stream, table.Name, s.Alias)
	}
	// Derived stream: codegen's *plan.Scan case fills in Columns later
	// via StreamInfo.SetColumns, copying the op chain and shape of the
	// lowered subtree into this placeholder. The Scan's Input is left
	// as it is; nothing substitutes a *plan.Table for it.
	_, err := c.RegisterStream(s.Stream, s.Alias, "", nil)
	return err
}

func (c *Context) registerTableStream(id, tableName, alias string) error {
	return c.registerTableStreamAs(id, tableName, alias)
}

func (c *Context) registerTableStreamAs(id, tableName, alias string) error {
	schema, err := c.Catalog.Schema(tableName)
	if err != nil {
		return err
	}
	cols := make([]catalog.Column, len(schema.Columns))
	copy(cols, schema.Columns)
	_, err = c.RegisterStream(id, alias, tableName, cols)
	return err
}
