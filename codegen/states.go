// Package codegen turns a transformed instruction graph into a runtime
// state table (and, via emit.go, standalone Go source that builds the same
// table) for the parse interpreter to dispatch over.
package codegen

import (
	"fmt"

	"pegc/graph"
	"pegc/runtime"
)

// EnumerateStates explodes every instruction reachable from p.Start into
// its 1-3 interpreter states (spec.md §4.11) and cross-links them into a
// runtime.Table. p must already be trimmed, sorted and cache-assigned (the
// transform pipeline's Run does all three); Cache instructions with an
// unassigned slot are rejected.
//
// Grounded on original_source/src/core/transformation/state_optimize.rs
// for the per-kind stage shapes, and spec.md §4.12 for the exact state
// wiring (each kind's Target/Cont cross-references).
func EnumerateStates(p *graph.Parser) (*runtime.Table, error) {
	order := graph.Walk(p)

	starts := make(map[graph.InstructionID]runtime.StateID, len(order))
	next := runtime.StateID(1) // 0 is runtime.HaltState
	for _, id := range order {
		starts[id] = next
		next += runtime.StateID(stageCount(p.Instructions.MustGet(id).Kind))
	}

	states := make([]runtime.State, next)

	for _, id := range order {
		instr := p.Instructions.MustGet(id)
		start := starts[id]

		switch instr.Kind {
		case graph.KindSeq:
			states[start] = runtime.State{Op: runtime.OpSeqStart, Target: starts[instr.A], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpSeqMiddle, Target: starts[instr.B], Cont: start + 2}
			states[start+2] = runtime.State{Op: runtime.OpSeqEnd}

		case graph.KindChoice:
			states[start] = runtime.State{Op: runtime.OpChoiceStart, Target: starts[instr.A], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpChoiceMiddle, Target: starts[instr.B], Cont: start + 2}
			states[start+2] = runtime.State{Op: runtime.OpChoiceEnd}

		case graph.KindFirstChoice:
			states[start] = runtime.State{Op: runtime.OpFirstChoiceStart, Target: starts[instr.A], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpFirstChoiceMiddle, Target: starts[instr.B]}

		case graph.KindNotAhead:
			states[start] = runtime.State{Op: runtime.OpNotAheadStart, Target: starts[instr.Target], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpNotAheadEnd}

		case graph.KindError:
			states[start] = runtime.State{Op: runtime.OpErrorStart, Target: starts[instr.Target], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpErrorEnd, Expected: instr.Expected}

		case graph.KindLabel:
			states[start] = runtime.State{Op: runtime.OpLabelStart, Target: starts[instr.Target], Cont: start + 1}
			states[start+1] = runtime.State{Op: runtime.OpLabelEnd, Label: instr.Label}

		case graph.KindCache:
			if instr.CacheSlot == nil {
				return nil, fmt.Errorf("codegen: instruction %s has no assigned cache slot; run transform.AssignCacheIDs first", id)
			}
			slot := *instr.CacheSlot
			states[start] = runtime.State{Op: runtime.OpCacheStart, Target: starts[instr.Target], Cont: start + 1, Slot: slot}
			states[start+1] = runtime.State{Op: runtime.OpCacheEnd, Slot: slot}

		case graph.KindDelegate:
			states[start] = runtime.State{Op: runtime.OpDelegate, Target: starts[instr.Target]}

		case graph.KindSeries:
			series := p.Series.MustGet(instr.Series)
			states[start] = runtime.State{Op: runtime.OpSeries, Matcher: compileSeriesMatcher(series)}
		}
	}

	startID, ok := starts[p.Start]
	if !ok {
		return nil, fmt.Errorf("codegen: start instruction %s not reachable", p.Start)
	}
	return &runtime.Table{States: states, Start: startID}, nil
}

// stageCount returns how many consecutive states a kind's instruction
// occupies.
func stageCount(k graph.Kind) int {
	switch k {
	case graph.KindSeq, graph.KindChoice:
		return 3
	case graph.KindFirstChoice, graph.KindNotAhead, graph.KindError, graph.KindLabel, graph.KindCache:
		return 2
	default: // Delegate, Series
		return 1
	}
}

// compileSeriesMatcher lowers a Series into the plain-data ClassSpec form
// and hands it to runtime.CompileClasses, the same builder Emit's
// generated source calls — so the in-memory table and an emitted parser
// match identically.
func compileSeriesMatcher(s graph.Series) runtime.SeriesMatcher {
	return runtime.CompileClasses(toClassSpecs(s))
}

func toClassSpecs(s graph.Series) []runtime.ClassSpec {
	classes := s.Classes()
	specs := make([]runtime.ClassSpec, len(classes))
	for i, c := range classes {
		ranges := make([][2]byte, len(c.Ranges()))
		for j, r := range c.Ranges() {
			lo, hi := r.Bounds()
			ranges[j] = [2]byte{lo, hi}
		}
		specs[i] = runtime.ClassSpec{Negated: c.Negated(), Ranges: ranges}
	}
	return specs
}
