package plan

import (
	"sync/atomic"

	"github.com/relstream/compiler/compileerr"
)

var posCounter int64

// NextPos hands out the next monotonic position tag. There is no
// surface-language parser upstream of this IR, so nodes don't carry a
// source span; NextPos gives every node and expression a stable,
// unique diagnostic handle instead.
func NextPos() compileerr.Pos {
	return compileerr.Pos(atomic.AddInt64(&posCounter, 1))
}
