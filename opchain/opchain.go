// Package opchain is the operator-AST codegen emits instead of
// assembling text directly: a small sum type (Source, Map, Filter,
// Fold, Sort, Limit, Distinct, Join, FloatLift/FloatLower) whose nodes
// carry typed expression trees, generalised from the teacher pack's
// operator package (operator.Operator implementations driven by a
// compiled github.com/expr-lang/expr program — see exprcompile.go).
//
// Unlike the teacher's operators, a node here does not execute: it
// describes one step of the pipeline the streaming runtime will run.
// Compiling each node's expression to a *vm.Program still happens at
// codegen time, so malformed expressions are caught at compile time
// rather than surfacing as a runtime panic.
package opchain

import "github.com/relstream/compiler/catalog"

// Op is one operator invocation appended to a stream's op chain.
type Op interface {
	opNode()
}

// Source seeds a stream with its opaque data-source name.
type Source struct {
	Name string
}

func (Source) opNode() {}

// Field is one output field of a Map/Fold final projection.
type Field struct {
	Name string
	Expr *CompiledExpr
	Type catalog.Type
}

// Map constructs StructName from Fields, one expression per field,
// evaluated against the current record.
type Map struct {
	StructName string
	Fields     []Field
}

func (Map) opNode() {}

// Filter keeps records for which Program evaluates true. Kind
// documents what shape the evaluation environment has, since a
// GroupBy's HAVING filter runs over (key-tuple, accumulator-tuple)
// rather than a plain record.
type Filter struct {
	Program *CompiledExpr
	Kind    FilterKind
}

func (Filter) opNode() {}

// FilterKind distinguishes a row-level WHERE from a post-fold HAVING.
type FilterKind int

const (
	FilterRow FilterKind = iota
	FilterHaving
)

// Fold is the accumulator-building step of aggregate mode (no GROUP
// BY) or GroupBy mode. Layout holds the symbolic slot table: codegen
// and the runtime address an accumulator by (function, column) rather
// than by its position in a tuple, so adding or reordering aggregates
// never shifts an unrelated slot's address. KeyColumns is empty for
// plain aggregate mode and non-empty for a GroupBy fold, in which case
// the folded stream's shape becomes (key-tuple, accumulator-tuple).
type Fold struct {
	KeyColumns []KeyColumn
	Layout     *AccumulatorLayout
}

func (Fold) opNode() {}

// KeyColumn is one key-tuple position of a GroupBy fold. Lifted is
// true when the key column is a float and must go through the
// ordered-float wrapper before it can serve as a map/set key.
type KeyColumn struct {
	EnvKey string
	Type   catalog.Type
	Lifted bool
}

// Sort is a stable sort over Keys. Limit/Offset are non-nil when a
// LIMIT directly follows the ORDER BY, letting the sort operator bound
// memory instead of materialising every row.
type Sort struct {
	Keys   []SortKey
	Limit  *int
	Offset *int
}

func (Sort) opNode() {}

// SortKey is one ORDER BY key.
type SortKey struct {
	EnvKey     string
	Desc       bool
	NullsFirst bool
	Type       catalog.Type
}

// Limit is a plain row-count truncation with offset, used when no
// ORDER BY precedes it.
type Limit struct {
	Count  int
	Offset int
}

func (Limit) opNode() {}

// Distinct is the set-uniqueness operator: equality-based deduplication
// on the lifted struct.
type Distinct struct{}

func (Distinct) opNode() {}

// FloatLift wraps every named float field in the ordered-float adapter
// before a DISTINCT/ORDER/GroupBy key derivation that needs a total
// order; FloatLower reverses it afterward. Both are omitted from the
// chain entirely when none of the touched keys are floats.
type FloatLift struct {
	Fields []string
}

func (FloatLift) opNode() {}

type FloatLower struct {
	Fields []string
}

func (FloatLower) opNode() {}

// JoinKeySide is one side's key extraction for a Join op: Stream is
// the ID of the stream this side's rows come from, and EnvKeys are the
// bare (pre-join) field names the key tuple is built from.
type JoinKeySide struct {
	Stream  string
	EnvKeys []string
}

// Join appends a keyed join on a tuple of key extractions from each
// side. Its output record IS the merged record going forward — every
// left column under its auto-alias name (EnvKey qualified) followed by
// every right column under its own — the same way Fold's output is the
// (key-tuple, accumulator-tuple) shape without a separate reshaping
// step; a later Map still runs when the surface projection asks for
// something other than every column from both sides. For Left/Outer,
// the non-matching side's fields are present but nil.
type Join struct {
	Kind  int // mirrors plan.JoinKind; kept decoupled from plan, see codegen for the mapping
	Left  JoinKeySide
	Right JoinKeySide
}

func (Join) opNode() {}

// Chain is the ordered list of operator invocations for one stream.
type Chain []Op

// Append grows the chain in place and returns it, mirroring the
// teacher's BaseLogicalPlan.AddOperators append style.
func (c Chain) Append(ops ...Op) Chain {
	return append(c, ops...)
}
