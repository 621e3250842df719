package plan

import "github.com/relstream/compiler/compileerr"

// ProjCol is one item of a Project's column list. SubqueryProj is
// rewritten to SubqueryVecProj during materialisation; codegen never
// sees a SubqueryProj.
type ProjCol interface {
	projColNode()
	Pos() compileerr.Pos
	Alias() string
}

// ColumnProj projects a bare or qualified column, optionally renamed.
type ColumnProj struct {
	Col      ColumnRef
	AliasStr string
	pos      compileerr.Pos
}

func NewColumnProj(col ColumnRef, alias string) ColumnProj {
	return ColumnProj{Col: col, AliasStr: alias, pos: NextPos()}
}

func (c ColumnProj) projColNode()          {}
func (c ColumnProj) Pos() compileerr.Pos    { return c.pos }
func (c ColumnProj) Alias() string         { return c.AliasStr }

// AggregateProj projects the result of an aggregate function.
type AggregateProj struct {
	Agg      Aggregate
	AliasStr string
	pos      compileerr.Pos
}

func NewAggregateProj(agg Aggregate, alias string) AggregateProj {
	return AggregateProj{Agg: agg, AliasStr: alias, pos: NextPos()}
}

func (a AggregateProj) projColNode()         {}
func (a AggregateProj) Pos() compileerr.Pos   { return a.pos }
func (a AggregateProj) Alias() string        { return a.AliasStr }

// ComplexValueProj projects an arbitrary expression, possibly
// containing one or more aggregates nested inside arithmetic.
type ComplexValueProj struct {
	Expr     Expr
	AliasStr string
	pos      compileerr.Pos
}

func NewComplexValueProj(expr Expr, alias string) ComplexValueProj {
	return ComplexValueProj{Expr: expr, AliasStr: alias, pos: NextPos()}
}

func (c ComplexValueProj) projColNode()        {}
func (c ComplexValueProj) Pos() compileerr.Pos  { return c.pos }
func (c ComplexValueProj) Alias() string       { return c.AliasStr }

// StringLiteralProj projects a constant string.
type StringLiteralProj struct {
	Value    string
	AliasStr string
	pos      compileerr.Pos
}

func NewStringLiteralProj(value, alias string) StringLiteralProj {
	return StringLiteralProj{Value: value, AliasStr: alias, pos: NextPos()}
}

func (s StringLiteralProj) projColNode()        {}
func (s StringLiteralProj) Pos() compileerr.Pos  { return s.pos }
func (s StringLiteralProj) Alias() string       { return s.AliasStr }

// SubqueryProj is a pending scalar subquery in projection position.
type SubqueryProj struct {
	Plan     Node
	AliasStr string
	pos      compileerr.Pos
}

func NewSubqueryProj(p Node, alias string) SubqueryProj {
	return SubqueryProj{Plan: p, AliasStr: alias, pos: NextPos()}
}

func (s SubqueryProj) projColNode()        {}
func (s SubqueryProj) Pos() compileerr.Pos  { return s.pos }
func (s SubqueryProj) Alias() string       { return s.AliasStr }

// SubqueryVecProj is SubqueryProj after materialisation: the reified
// scalar result plus its element type, so codegen can emit a direct
// value access instead of a subquery plan.
type SubqueryVecProj struct {
	Scalar   SubqueryScalar
	AliasStr string
	pos      compileerr.Pos
}

func NewSubqueryVecProj(scalar SubqueryScalar, alias string) SubqueryVecProj {
	return SubqueryVecProj{Scalar: scalar, AliasStr: alias, pos: NextPos()}
}

func (s SubqueryVecProj) projColNode()        {}
func (s SubqueryVecProj) Pos() compileerr.Pos  { return s.pos }
func (s SubqueryVecProj) Alias() string       { return s.AliasStr }

// IsStar reports whether cols is exactly `[Column("*")]`, the
// SELECT-* trigger for codegen's mode selection.
func IsStar(cols []ProjCol) bool {
	if len(cols) != 1 {
		return false
	}
	cp, ok := cols[0].(ColumnProj)
	return ok && !cp.Col.Qualified() && cp.Col.Column == "*"
}

// ContainsAggregate reports whether expr syntactically contains an
// aggregate application anywhere in its tree.
func ContainsAggregate(expr Expr) bool {
	switch e := expr.(type) {
	case Aggregate:
		return true
	case Binary:
		return ContainsAggregate(e.Left) || ContainsAggregate(e.Right)
	default:
		return false
	}
}

// HasAggregateProjection reports whether any projection element
// contains an aggregate, directly or nested inside a ComplexValueProj.
// This is the second step of codegen's projection-mode selection.
func HasAggregateProjection(cols []ProjCol) bool {
	for _, c := range cols {
		switch p := c.(type) {
		case AggregateProj:
			return true
		case ComplexValueProj:
			if ContainsAggregate(p.Expr) {
				return true
			}
		}
	}
	return false
}
