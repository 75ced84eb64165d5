package runtime

import "pegc/graph"

// StateID indexes a Table's state slice. 0 is reserved for the terminal
// sentinel state, matching original_source/src/runtime/context.rs's
// FINISH_STATE bottom-of-stack marker.
type StateID uint32

// HaltState is the bottom-of-stack sentinel: the dispatch loop stops when
// it becomes the top state.
const HaltState StateID = 0

// StateOp names one of the start/middle/end "stages" spec.md §4.11/§4.12
// explodes each instruction into.
type StateOp byte

const (
	OpHalt StateOp = iota
	OpSeqStart
	OpSeqMiddle
	OpSeqEnd
	OpChoiceStart
	OpChoiceMiddle
	OpChoiceEnd
	OpFirstChoiceStart
	OpFirstChoiceMiddle
	OpNotAheadStart
	OpNotAheadEnd
	OpErrorStart
	OpErrorEnd
	OpLabelStart
	OpLabelEnd
	OpCacheStart
	OpCacheEnd
	OpDelegate
	OpSeries
)

// SeriesMatcher is a compiled byte-range matcher for one Series: it reports
// whether the series matches at pos, and how many bytes it inspected
// either way (its would-be length on a hit, or the number of bytes peeked
// before ruling a miss out).
type SeriesMatcher func(input Input, pos int) (matched bool, length int)

// State is one entry of a Table: a single suspension point in the
// interpreter loop. Target is the sub-evaluation to push for a *_start
// stage, or the second operand's start state for a *_middle stage; Cont is
// the state to resume at once the pushed sub-evaluation concludes.
//
// Grounded on spec.md §4.11/§4.12 and
// original_source/src/runtime/context.rs's const-generic state_* methods,
// generalized into table-driven data instead of monomorphized functions
// per (FIRST, CONTINUATION) pair, since Go has no const generics.
type State struct {
	Op       StateOp
	Target   StateID
	Cont     StateID
	Label    graph.LabelID
	Expected graph.ExpectedID
	Slot     int
	Matcher  SeriesMatcher
}

// Table is a fully enumerated grammar: a dense state list plus the id of
// the state that begins a parse.
type Table struct {
	States []State
	Start  StateID
}
