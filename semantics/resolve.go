package semantics

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/logger"
	"github.com/relstream/compiler/plan"
)

// Resolution is the outcome of resolving a column reference: which
// stream it belongs to and its current declared type there.
type Resolution struct {
	Stream *StreamInfo
	Type   catalog.Type
}

// ResolveColumn finds the single stream a column reference belongs to.
// A qualified reference (t.col) looks up the named alias or stream id
// directly. A bare reference is matched against every stream currently
// in scope. Once the plan has a join, naming the column in two or more
// streams is an ambiguity error. Without a join (e.g. a derived-table
// scope), the most recently registered stream carrying the column wins,
// and the tie-break is logged at WARN.
func (c *Context) ResolveColumn(ref plan.ColumnRef) (Resolution, error) {
	if ref.Qualified() {
		s, ok := c.StreamByAliasOrID(ref.Table)
		if !ok {
			return Resolution{}, compileerr.At(compileerr.UnknownTable, ref.Pos(), "unknown table or alias %q", ref.Table)
		}
		typ, ok := s.Lookup(ref.Column)
		if !ok {
			return Resolution{}, compileerr.At(compileerr.UnknownColumn, ref.Pos(), "unknown column %q on %q", ref.Column, ref.Table)
		}
		return Resolution{Stream: s, Type: typ}, nil
	}

	var match *StreamInfo
	var matchType catalog.Type
	for _, id := range c.streamOrder {
		s := c.streams[id]
		if typ, ok := s.Lookup(ref.Column); ok {
			if match != nil && c.HasJoin {
				return Resolution{}, compileerr.At(compileerr.AmbiguousColumn, ref.Pos(),
					"column %q is ambiguous between %q and %q", ref.Column, match.ID, s.ID)
			}
			if match != nil {
				logger.Warn("column %q found in %q and %q; using the later stream %q", ref.Column, match.ID, s.ID, s.ID)
			}
			match = s
			matchType = typ
		}
	}
	if match == nil {
		return Resolution{}, compileerr.At(compileerr.UnknownColumn, ref.Pos(), "unknown column %q", ref.Column)
	}
	return Resolution{Stream: match, Type: matchType}, nil
}

// EnvKeyFor resolves ref and returns the identifier it is bound under
// in a compiled expr-lang environment, qualifying it with the owning
// stream's alias whenever the context has a join, matching the
// auto-alias naming applied to joined output.
func (c *Context) EnvKeyFor(ref plan.ColumnRef) (string, error) {
	res, err := c.ResolveColumn(ref)
	if err != nil {
		return "", err
	}
	return res.Stream.EnvKey(ref.Column, c.HasJoin), nil
}
