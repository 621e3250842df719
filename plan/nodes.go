package plan

import "github.com/relstream/compiler/compileerr"

// Node is a relational plan node. Every non-leaf node has one input
// except Join, which has two.
type Node interface {
	planNode()
	Pos() compileerr.Pos
}

// Table is a leaf referring to a catalog entry.
type Table struct {
	Name string
	pos  compileerr.Pos
}

func NewTable(name string) *Table {
	return &Table{Name: name, pos: NextPos()}
}

func (t *Table) planNode()           {}
func (t *Table) Pos() compileerr.Pos { return t.pos }

// Scan binds a plan's output to a named stream with an optional
// user alias. A Scan's alias, if present, is unique within the plan.
type Scan struct {
	Input Node
	// Stream is the stable stream name this Scan introduces.
	Stream string
	// Alias is the user-supplied alias, or "" if none was given.
	Alias string
	pos   compileerr.Pos
}

func NewScan(input Node, stream, alias string) *Scan {
	return &Scan{Input: input, Stream: stream, Alias: alias, pos: NextPos()}
}

func (s *Scan) planNode()           {}
func (s *Scan) Pos() compileerr.Pos { return s.pos }

// Filter is row-level boolean selection.
type Filter struct {
	Input Node
	Pred  Cond
	pos   compileerr.Pos
}

func NewFilter(input Node, pred Cond) *Filter {
	return &Filter{Input: input, Pred: pred, pos: NextPos()}
}

func (f *Filter) planNode()           {}
func (f *Filter) Pos() compileerr.Pos { return f.pos }

// Project is tuple reshaping and optional deduplication.
type Project struct {
	Input    Node
	Columns  []ProjCol
	Distinct bool
	pos      compileerr.Pos
}

func NewProject(input Node, columns []ProjCol, distinct bool) *Project {
	return &Project{Input: input, Columns: columns, Distinct: distinct, pos: NextPos()}
}

func (p *Project) planNode()           {}
func (p *Project) Pos() compileerr.Pos { return p.pos }

// JoinKind is the closed set of supported join kinds.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinOuter
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinOuter:
		return "OUTER"
	default:
		return "?"
	}
}

// JoinCond is one equi-condition of a Join; multiple equalities are
// conjoined.
type JoinCond struct {
	Left, Right ColumnRef
}

// Join is a relational join between two inputs on a list of
// equi-conditions.
type Join struct {
	Left, Right Node
	Conds       []JoinCond
	Kind        JoinKind
	pos         compileerr.Pos
}

func NewJoin(left, right Node, conds []JoinCond, kind JoinKind) *Join {
	return &Join{Left: left, Right: right, Conds: conds, Kind: kind, pos: NextPos()}
}

func (j *Join) planNode()           {}
func (j *Join) Pos() compileerr.Pos { return j.pos }

// GroupBy is key-partitioned aggregation. Having is nil when the plan
// has no HAVING clause. Keys must reference columns reachable from
// Input.
type GroupBy struct {
	Input  Node
	Keys   []ColumnRef
	Having Cond
	pos    compileerr.Pos
}

func NewGroupBy(input Node, keys []ColumnRef, having Cond) *GroupBy {
	return &GroupBy{Input: input, Keys: keys, Having: having, pos: NextPos()}
}

func (g *GroupBy) planNode()           {}
func (g *GroupBy) Pos() compileerr.Pos { return g.pos }

// OrderItem is one ORDER BY key: a column, its direction, and an
// optional nulls-first override (nil means the per-direction default:
// nulls-first for DESC, nulls-last for ASC).
type OrderItem struct {
	Col        ColumnRef
	Desc       bool
	NullsFirst *bool
}

// OrderBy is a deterministic ordering over one or more keys.
type OrderBy struct {
	Input Node
	Items []OrderItem
	pos   compileerr.Pos
}

func NewOrderBy(input Node, items []OrderItem) *OrderBy {
	return &OrderBy{Input: input, Items: items, pos: NextPos()}
}

func (o *OrderBy) planNode()           {}
func (o *OrderBy) Pos() compileerr.Pos { return o.pos }

// Limit is row-count truncation with an optional offset.
type Limit struct {
	Input  Node
	Count  int
	Offset int
	pos    compileerr.Pos
}

func NewLimit(input Node, count, offset int) *Limit {
	return &Limit{Input: input, Count: count, Offset: offset, pos: NextPos()}
}

func (l *Limit) planNode()           {}
func (l *Limit) Pos() compileerr.Pos { return l.pos }
