package plan

import "github.com/relstream/compiler/compileerr"

// Cond is a predicate tree: AND/OR over comparisons, null checks, IN
// lists and materialised booleans from subqueries.
type Cond interface {
	condNode()
	Pos() compileerr.Pos
}

// CmpOp is the closed set of comparison operators.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

func (o CmpOp) String() string {
	switch o {
	case CmpEq:
		return "=="
	case CmpNeq:
		return "!="
	case CmpLt:
		return "<"
	case CmpLte:
		return "<="
	case CmpGt:
		return ">"
	case CmpGte:
		return ">="
	default:
		return "?"
	}
}

// Comparison is a single leaf comparison between two expressions.
type Comparison struct {
	Left, Right Expr
	Op          CmpOp
	pos         compileerr.Pos
}

func NewComparison(left Expr, op CmpOp, right Expr) Comparison {
	return Comparison{Left: left, Op: op, Right: right, pos: NextPos()}
}

func (c Comparison) condNode()          {}
func (c Comparison) Pos() compileerr.Pos { return c.pos }

// NullCheck is an IS [NOT] NULL test. It is its own IR node rather
// than a Comparison against a null literal, since null participates in
// no ordering and deserves a dedicated, unambiguous node shape.
type NullCheck struct {
	Target Expr
	Not    bool
	pos    compileerr.Pos
}

func NewNullCheck(target Expr, not bool) NullCheck {
	return NullCheck{Target: target, Not: not, pos: NextPos()}
}

func (n NullCheck) condNode()           {}
func (n NullCheck) Pos() compileerr.Pos { return n.pos }

// Between is sugar for a conjoined range; the normaliser lowers it to
// And(Gte(target, lo), Lte(target, hi)) before codegen ever sees it.
type Between struct {
	Target, Lo, Hi Expr
	pos            compileerr.Pos
}

func NewBetween(target, lo, hi Expr) Between {
	return Between{Target: target, Lo: lo, Hi: hi, pos: NextPos()}
}

func (b Between) condNode()           {}
func (b Between) Pos() compileerr.Pos { return b.pos }

// InCond is `target IN (...)`; Values starts as a literal list from
// the surface language or is substituted from a materialised
// IN-subquery.
type InCond struct {
	Target Expr
	Values InList
	Not    bool
	pos    compileerr.Pos
}

func NewInCond(target Expr, values InList, not bool) InCond {
	return InCond{Target: target, Values: values, Not: not, pos: NextPos()}
}

func (n InCond) condNode()           {}
func (n InCond) Pos() compileerr.Pos { return n.pos }

// InSubquery is `target IN (SELECT ...)`, pending materialisation into
// an InCond once the subquery materialiser resolves and sorts the
// nested plan's output column into a literal list.
type InSubquery struct {
	Target Expr
	Plan   Node
	Not    bool
	pos    compileerr.Pos
}

func NewInSubquery(target Expr, p Node, not bool) InSubquery {
	return InSubquery{Target: target, Plan: p, Not: not, pos: NextPos()}
}

func (s InSubquery) condNode()           {}
func (s InSubquery) Pos() compileerr.Pos { return s.pos }

// Exists is `[NOT] EXISTS (SELECT ...)`, pending materialisation into a
// BoolLit once the subquery materialiser determines whether the nested
// plan produces any row.
type Exists struct {
	Plan Node
	Not  bool
	pos  compileerr.Pos
}

func NewExists(p Node, not bool) Exists {
	return Exists{Plan: p, Not: not, pos: NextPos()}
}

func (e Exists) condNode()           {}
func (e Exists) Pos() compileerr.Pos { return e.pos }

// BoolLit is a materialised EXISTS / NOT EXISTS result.
type BoolLit struct {
	Value bool
	pos   compileerr.Pos
}

func NewBoolLit(v bool) BoolLit {
	return BoolLit{Value: v, pos: NextPos()}
}

func (b BoolLit) condNode()           {}
func (b BoolLit) Pos() compileerr.Pos { return b.pos }

// And is a left-associative AND node, the shape the normaliser
// flattens every conjunction into.
type And struct {
	Left, Right Cond
	pos         compileerr.Pos
}

func NewAnd(left, right Cond) And {
	return And{Left: left, Right: right, pos: NextPos()}
}

func (a And) condNode()           {}
func (a And) Pos() compileerr.Pos { return a.pos }

// Or is a left-associative OR node. Parenthesised is true when this OR
// sits beneath an And and must keep explicit grouping to preserve
// short-circuit semantics on emission.
type Or struct {
	Left, Right   Cond
	Parenthesised bool
	pos           compileerr.Pos
}

func NewOr(left, right Cond) Or {
	return Or{Left: left, Right: right, pos: NextPos()}
}

func (o Or) condNode()           {}
func (o Or) Pos() compileerr.Pos { return o.pos }
