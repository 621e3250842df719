// Package plan is the intermediate relational plan: a typed tree of
// relational nodes plus its expression sub-language. Constructors
// only; equality is structural; nodes are plain immutable values
// referenced by pointer, never mutated after construction.
package plan

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
)

// Expr is a scalar expression: exactly one of ColumnRef, Literal,
// Aggregate, Binary or Subquery/SubqueryScalar/InList is ever
// constructed for a given expression position — a sealed interface
// rather than one struct with a field per alternative, so there is no
// Option-of-Option probing to do a type switch on unpopulated fields.
type Expr interface {
	exprNode()
	Pos() compileerr.Pos
}

// ColumnRef is an optionally table-qualified column reference.
type ColumnRef struct {
	Table  string // empty when bare
	Column string
	pos    compileerr.Pos
}

func NewColumnRef(table, column string) ColumnRef {
	return ColumnRef{Table: table, Column: column, pos: NextPos()}
}

func (c ColumnRef) exprNode()            {}
func (c ColumnRef) Pos() compileerr.Pos  { return c.pos }
func (c ColumnRef) Qualified() bool      { return c.Table != "" }

// LiteralKind tags which field of Literal.Value is meaningful.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
)

// Literal is a constant value. Value holds the matching Go type for
// Kind (int64, float64, string or bool) — one field, not four optional
// fields.
type Literal struct {
	Kind  LiteralKind
	Value any
	pos   compileerr.Pos
}

func NewIntLiteral(v int64) Literal    { return Literal{Kind: LitInt, Value: v, pos: NextPos()} }
func NewFloatLiteral(v float64) Literal { return Literal{Kind: LitFloat, Value: v, pos: NextPos()} }
func NewStringLiteral(v string) Literal { return Literal{Kind: LitString, Value: v, pos: NextPos()} }
func NewBoolLiteral(v bool) Literal    { return Literal{Kind: LitBool, Value: v, pos: NextPos()} }

func (l Literal) exprNode()           {}
func (l Literal) Pos() compileerr.Pos { return l.pos }

// AggFunc is the closed set of aggregate functions.
type AggFunc int

const (
	AggSum AggFunc = iota
	AggMin
	AggMax
	AggCount
	AggAvg
)

func (f AggFunc) String() string {
	switch f {
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggCount:
		return "COUNT"
	case AggAvg:
		return "AVG"
	default:
		return "UNKNOWN"
	}
}

// Aggregate is an aggregate-function application. Star is only ever
// true for AggCount (COUNT(*)); Arg is the zero ColumnRef exactly when
// Star is true.
type Aggregate struct {
	Func AggFunc
	Arg  ColumnRef
	Star bool
	pos  compileerr.Pos
}

func NewAggregate(fn AggFunc, arg ColumnRef) Aggregate {
	return Aggregate{Func: fn, Arg: arg, pos: NextPos()}
}

func NewCountStar() Aggregate {
	return Aggregate{Func: AggCount, Star: true, pos: NextPos()}
}

func (a Aggregate) exprNode()           {}
func (a Aggregate) Pos() compileerr.Pos { return a.pos }

// BinOp is the closed set of arithmetic operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o BinOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

// Binary is a nested binary expression. Parenthesised records whether
// the surface language wrapped this node in explicit parentheses; it
// has no effect on evaluated value (operator precedence is already
// baked into tree shape) but matters to any textual re-rendering a
// driver performs on top of the compiled pipeline.
type Binary struct {
	Op            BinOp
	Left, Right   Expr
	Parenthesised bool
	pos           compileerr.Pos
}

func NewBinary(op BinOp, left, right Expr) Binary {
	return Binary{Op: op, Left: left, Right: right, pos: NextPos()}
}

func (b Binary) exprNode()           {}
func (b Binary) Pos() compileerr.Pos { return b.pos }

// Subquery is a pending nested plan occupying a scalar expression
// position. The subquery materialiser (package subquery) rewrites it
// to a SubqueryScalar before codegen ever sees the enclosing plan.
type Subquery struct {
	Plan Node
	pos  compileerr.Pos
}

func NewSubquery(p Node) Subquery {
	return Subquery{Plan: p, pos: NextPos()}
}

func (s Subquery) exprNode()           {}
func (s Subquery) Pos() compileerr.Pos { return s.pos }

// SubqueryScalar is a materialised scalar subquery: the reified
// single-row, single-column result plus its declared type, so codegen
// can emit the value as a constant.
type SubqueryScalar struct {
	Value     Literal
	ValueType catalog.Type
	pos       compileerr.Pos
}

func NewSubqueryScalar(value Literal, valueType catalog.Type) SubqueryScalar {
	return SubqueryScalar{Value: value, ValueType: valueType, pos: NextPos()}
}

func (s SubqueryScalar) exprNode()           {}
func (s SubqueryScalar) Pos() compileerr.Pos { return s.pos }

// InList is a materialised IN-subquery result: a sorted, deduplicated
// list of literals substituted for the subquery.
type InList struct {
	Values []Literal
	pos    compileerr.Pos
}

func NewInList(values []Literal) InList {
	return InList{Values: values, pos: NextPos()}
}

func (l InList) exprNode()           {}
func (l InList) Pos() compileerr.Pos { return l.pos }
