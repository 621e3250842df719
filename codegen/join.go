package codegen

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// generateJoin compiles both sides independently (each keeps its own
// Source-rooted chain on its StreamInfo) and appends a Join op to the
// left side's chain. The left stream absorbs the merged, auto-aliased
// record shape and becomes the continuing driving stream. The right
// stream's chain stays on its StreamInfo in the semantic context and
// is not part of Generate's output, which carries only the driving
// stream's chain; the Join op refers to the right side by stream ID.
func generateJoin(ctx *semantics.Context, j *plan.Join) (*semantics.StreamInfo, error) {
	left, err := generateNode(ctx, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := generateNode(ctx, j.Right)
	if err != nil {
		return nil, err
	}

	leftKeys := make([]string, len(j.Conds))
	rightKeys := make([]string, len(j.Conds))
	for i, jc := range j.Conds {
		leftKeys[i] = left.EnvKey(jc.Left.Column, false)
		rightKeys[i] = right.EnvKey(jc.Right.Column, false)
	}

	kind, err := mapJoinKind(j.Kind)
	if err != nil {
		return nil, err
	}

	left.OpChain = left.OpChain.Append(opchain.Join{
		Kind:  kind,
		Left:  opchain.JoinKeySide{Stream: left.ID, EnvKeys: leftKeys},
		Right: opchain.JoinKeySide{Stream: right.ID, EnvKeys: rightKeys},
	})

	merged := make([]catalog.Column, 0, len(left.Columns)+len(right.Columns))
	for _, col := range left.Columns {
		merged = append(merged, catalog.Column{Name: left.EnvKey(col.Name, true), Type: col.Type})
	}
	for _, col := range right.Columns {
		merged = append(merged, catalog.Column{Name: right.EnvKey(col.Name, true), Type: col.Type})
	}
	left.SetColumns(merged)
	left.StructName = ctx.NextStructName("Row")
	left.Keyed = false
	return left, nil
}

func mapJoinKind(k plan.JoinKind) (int, error) {
	switch k {
	case plan.JoinInner:
		return 0, nil
	case plan.JoinLeft:
		return 1, nil
	case plan.JoinOuter:
		return 2, nil
	default:
		return 0, compileerr.New(compileerr.InternalInvariant, "unknown join kind %d", k)
	}
}
