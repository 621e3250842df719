package opchain

import (
	"fmt"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/plan"
)

// AccumulatorSlot is one fold slot: one running aggregate for one
// column (or the whole row, for COUNT(*)). Avg is built from two
// slots — a sum slot and a count slot — sharing the same Column, since
// the runtime produces the average by dividing one by the other on
// the final map rather than folding a running average directly.
type AccumulatorSlot struct {
	ID     string
	Func   plan.AggFunc
	Column string // "" for COUNT(*)
	Type   catalog.Type
}

// AccumulatorLayout is the symbolic slot table a Fold op carries,
// generalising the teacher's GroupAggregator.aggregators map (keyed by
// output alias rather than by the tuple position an ordinary struct
// literal would assign). Codegen and the runtime both address a slot
// by SlotID(fn, column), never by its index in Slots, so inserting or
// reordering aggregates in a projection list never invalidates an
// existing slot's address.
type AccumulatorLayout struct {
	Slots  []AccumulatorSlot
	lookup map[string]int
}

// NewAccumulatorLayout builds a layout from slots in declaration order.
func NewAccumulatorLayout(slots ...AccumulatorSlot) *AccumulatorLayout {
	l := &AccumulatorLayout{Slots: slots, lookup: make(map[string]int, len(slots))}
	for i, s := range slots {
		l.lookup[s.ID] = i
	}
	return l
}

// Add appends a slot if no slot with the same ID is already present,
// returning the existing or newly assigned index. Two aggregate
// projections over the same (function, column) pair share one slot.
func (l *AccumulatorLayout) Add(slot AccumulatorSlot) int {
	if i, ok := l.lookup[slot.ID]; ok {
		return i
	}
	if l.lookup == nil {
		l.lookup = make(map[string]int)
	}
	i := len(l.Slots)
	l.Slots = append(l.Slots, slot)
	l.lookup[slot.ID] = i
	return i
}

// Lookup returns the slot index for (fn, column), if present.
func (l *AccumulatorLayout) Lookup(fn plan.AggFunc, column string) (int, bool) {
	i, ok := l.lookup[SlotID(fn, column)]
	return i, ok
}

// SlotID is the symbolic accumulator address for one (function,
// column) pair.
func SlotID(fn plan.AggFunc, column string) string {
	if column == "" {
		return fmt.Sprintf("__acc_%s_star", fn.String())
	}
	return fmt.Sprintf("__acc_%s_%s", fn.String(), column)
}

// AvgSumSlotID and AvgCountSlotID name the two slots AVG folds into.
func AvgSumSlotID(column string) string   { return SlotID(plan.AggSum, column) }
func AvgCountSlotID(column string) string { return SlotID(plan.AggCount, column) }
