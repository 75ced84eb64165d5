// Package graph implements the instruction-graph IR: its data model, the
// IR loader, and the compile-time analyses (character fixpoint, left
// recursion validation, expected-set inference, graph walk/SCC) that the
// transform pipeline and code generator build on.
package graph

import "fmt"

// Key is the constraint satisfied by every id type stored in a Store: a
// small dense handle backed by a uint32, giving Store a single generic
// implementation shared by instructions, series, labels and expecteds.
type Key interface {
	~uint32
}

// InstructionID is a stable handle into the instruction store. Its position
// in the store is its identity: two instructions with the same id are the
// same node in the graph.
type InstructionID uint32

func (id InstructionID) String() string { return fmt.Sprintf("i%d", uint32(id)) }

// SeriesID is a stable handle into the series store.
type SeriesID uint32

func (id SeriesID) String() string { return fmt.Sprintf("s%d", uint32(id)) }

// LabelID is a stable handle into the label store.
type LabelID uint32

func (id LabelID) String() string { return fmt.Sprintf("l%d", uint32(id)) }

// ExpectedID is a stable handle into the expected-set store.
type ExpectedID uint32

func (id ExpectedID) String() string { return fmt.Sprintf("e%d", uint32(id)) }
