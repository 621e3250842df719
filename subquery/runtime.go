// Package subquery materialises every nested plan occupying a scalar,
// IN-list, or EXISTS position into a concrete value before codegen
// ever walks the enclosing plan. It does this depth-first: the
// innermost subquery of a nested chain resolves first, so an outer
// subquery that itself references a materialised inner result sees
// only already-resolved values.
//
// Materialisation here never walks its own nested plan through
// codegen directly — it hands the sub-plan to a Runtime collaborator
// and treats the result as opaque rows, the same boundary the
// compiler's top-level entry point crosses into the collaborating
// execution environment.
package subquery

import (
	"context"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/plan"
)

// Row is one result row of a compiled-and-run subquery, keyed by
// result column name.
type Row map[string]any

// Runtime compiles and executes p (against the shared catalog) and
// returns its result rows along with the ordered result schema, so the
// materialiser can coerce raw values against their declared type.
type Runtime interface {
	RunAndCollect(ctx context.Context, p plan.Node, cat *catalog.Catalog) (rows []Row, columns []catalog.Column, err error)
}
