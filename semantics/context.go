// Package semantics builds and queries the per-compilation semantic
// context: which streams are in scope, what each one's current column
// shape is, and how a bare or qualified column reference resolves to
// one of them. It generalises the teacher's StreamSqlContext (see
// types/types.go) from a single implicit input stream to the
// multi-stream, join-aware scope a relational plan needs.
package semantics

import (
	"fmt"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
)

// StreamInfo is the live, evolving picture of one stream: the
// catalog-backed or derived column set it currently carries, the
// struct name codegen has materialised for it so far, and the op
// chain built up as plan nodes are lowered against it.
type StreamInfo struct {
	ID     string
	Alias  string
	Source string // backing table name, "" for a derived/subquery stream
	Columns []catalog.Column
	columnIndex map[string]int

	StructName string
	OpChain    opchain.Chain
	Keyed      bool
}

func newStreamInfo(id, alias, source string, columns []catalog.Column) *StreamInfo {
	s := &StreamInfo{ID: id, Alias: alias, Source: source, Columns: columns}
	s.reindex()
	return s
}

func (s *StreamInfo) reindex() {
	s.columnIndex = make(map[string]int, len(s.Columns))
	for i, c := range s.Columns {
		s.columnIndex[c.Name] = i
	}
}

// Has reports whether this stream currently carries column.
func (s *StreamInfo) Has(column string) bool {
	_, ok := s.columnIndex[column]
	return ok
}

// Lookup returns column's declared type within this stream.
func (s *StreamInfo) Lookup(column string) (catalog.Type, bool) {
	i, ok := s.columnIndex[column]
	if !ok {
		return 0, false
	}
	return s.Columns[i].Type, true
}

// SetColumns replaces the stream's current column shape (used after a
// Project reshapes it) and rebuilds the lookup index.
func (s *StreamInfo) SetColumns(columns []catalog.Column) {
	s.Columns = columns
	s.reindex()
}

// EnvKey is the identifier column is bound under in a compiled
// expr-lang environment for this stream: bare when the compilation has
// no join, alias- or stream-qualified once one does, matching the
// auto-alias names codegen gives the merged record after a Join.
func (s *StreamInfo) EnvKey(column string, qualify bool) string {
	if !qualify {
		return sanitizeIdent(column)
	}
	name := s.Alias
	if name == "" {
		name = s.ID
	}
	return sanitizeIdent(fmt.Sprintf("%s_%s", column, name))
}

// ResultColumn is one entry of the plan's final, ordered output shape.
type ResultColumn struct {
	Name string
	Type catalog.Type
}

// Context is the semantic context built for one compilation: the
// registered streams, their aliases, and the result schema being
// assembled as codegen walks the plan.
type Context struct {
	Catalog *catalog.Catalog

	streams     map[string]*StreamInfo
	streamOrder []string
	aliasIndex  map[string]string

	HasJoin bool

	ResultColumns []ResultColumn

	structCounter int
}

// New returns an empty context over cat, ready for Populate.
func New(cat *catalog.Catalog) *Context {
	return &Context{
		Catalog:    cat,
		streams:    make(map[string]*StreamInfo),
		aliasIndex: make(map[string]string),
	}
}

// RegisterStream adds a new stream to scope. id must be unique; alias,
// if non-empty, must not collide with another stream's id or alias.
func (c *Context) RegisterStream(id, alias, source string, columns []catalog.Column) (*StreamInfo, error) {
	if _, exists := c.streams[id]; exists {
		return nil, compileerr.New(compileerr.StreamConflict, "stream %q already registered", id)
	}
	if alias != "" {
		if _, exists := c.aliasIndex[alias]; exists {
			return nil, compileerr.New(compileerr.AliasConflict, "alias %q already in use", alias)
		}
		if _, exists := c.streams[alias]; exists {
			return nil, compileerr.New(compileerr.AliasConflict, "alias %q collides with stream id %q", alias, alias)
		}
	}
	info := newStreamInfo(id, alias, source, columns)
	c.streams[id] = info
	c.streamOrder = append(c.streamOrder, id)
	if alias != "" {
		c.aliasIndex[alias] = id
	}
	return info, nil
}

// Stream returns the stream registered under id.
func (c *Context) Stream(id string) (*StreamInfo, bool) {
	s, ok := c.streams[id]
	return s, ok
}

// StreamByAliasOrID resolves either an alias or a bare stream id to
// its StreamInfo.
func (c *Context) StreamByAliasOrID(name string) (*StreamInfo, bool) {
	if id, ok := c.aliasIndex[name]; ok {
		return c.streams[id], true
	}
	s, ok := c.streams[name]
	return s, ok
}

// Streams returns every registered stream in registration order.
func (c *Context) Streams() []*StreamInfo {
	out := make([]*StreamInfo, len(c.streamOrder))
	for i, id := range c.streamOrder {
		out[i] = c.streams[id]
	}
	return out
}

// NextStructName hands out a fresh, deterministic struct name for
// codegen to materialise a stream's current shape under, e.g. "Row1",
// "Row2".
func (c *Context) NextStructName(prefix string) string {
	c.structCounter++
	return fmt.Sprintf("%s%d", prefix, c.structCounter)
}

// AddResultColumn appends one entry to the plan's output schema, in
// the order codegen establishes it (textual projection order).
func (c *Context) AddResultColumn(name string, typ catalog.Type) {
	c.ResultColumns = append(c.ResultColumns, ResultColumn{Name: name, Type: typ})
}

func sanitizeIdent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			out = append(out, ch)
		case ch == '_':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		out = append([]byte{'_'}, out...)
	}
	return string(out)
}
