package transform

import (
	"pegc/graph"
	"pegc/runtime"
)

// InsertCachePoints wraps every instruction with two or more (duplicated,
// i.e. edge-counted rather than set-counted) predecessors in a Cache node,
// provided its estimated work exceeds runtime.MaxUncachedWork — an
// instruction cheap enough to re-run from scratch on every visit isn't
// worth a memoization slot.
//
// Grounded on
// original_source/src/core/transformation/cache_insertion.rs; the inherent
// per-kind work constants there (and reused unchanged here, from
// runtime.SeriesWork etc.) treat Series as flat-cost regardless of its
// length — this repository keeps that simplification rather than guessing
// at the "series-length+…" refinement spec.md gestures at without pinning
// down, since the original implementation it was distilled from never
// scales Series work by length either.
func InsertCachePoints(p *graph.Parser) {
	preds := graph.Predecessors(p)

	order := graph.Walk(p)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if p.Instructions.MustGet(id).Kind == graph.KindCache {
			continue
		}
		if len(preds[id]) < 2 {
			continue
		}

		work, ok := estimateWork(p, id, make(map[graph.InstructionID]struct{}))
		if ok && work <= runtime.MaxUncachedWork {
			continue
		}

		symbol := p.Symbol(id)
		newID := p.Insert(graph.CacheInstr(id, nil), symbol)

		for _, predID := range preds[id] {
			pred := p.Instructions.MustGet(predID)
			p.Instructions.Set(predID, pred.Remapped(func(old graph.InstructionID) graph.InstructionID {
				if old == id {
					return newID
				}
				return old
			}))
		}
	}
}

// estimateWork sums the inherent cost of every instruction reachable from
// id, returning ok=false if that reachable set loops back to an instruction
// still being measured (a cycle means the true cost is unbounded under this
// simple sum, so the caller treats it as "definitely worth caching").
func estimateWork(p *graph.Parser, id graph.InstructionID, visiting map[graph.InstructionID]struct{}) (int, bool) {
	if _, ok := visiting[id]; ok {
		return 0, false
	}
	visiting[id] = struct{}{}
	defer delete(visiting, id)

	instr := p.Instructions.MustGet(id)
	inherent := inherentWork(instr)

	switch instr.Kind {
	case graph.KindSeq, graph.KindChoice, graph.KindFirstChoice:
		a, ok := estimateWork(p, instr.A, visiting)
		if !ok {
			return 0, false
		}
		b, ok := estimateWork(p, instr.B, visiting)
		if !ok {
			return 0, false
		}
		return a + b + inherent, true
	case graph.KindNotAhead, graph.KindError, graph.KindLabel, graph.KindDelegate:
		t, ok := estimateWork(p, instr.Target, visiting)
		if !ok {
			return 0, false
		}
		return t + inherent, true
	default: // Cache, Series
		return inherent, true
	}
}

func inherentWork(instr graph.Instruction) int {
	switch instr.Kind {
	case graph.KindSeq:
		return runtime.SeqWork
	case graph.KindChoice, graph.KindFirstChoice:
		return runtime.ChoiceWork
	case graph.KindNotAhead:
		return runtime.NotAheadWork
	case graph.KindDelegate:
		return 0
	case graph.KindCache:
		return runtime.CacheWork
	case graph.KindError:
		return runtime.MarkErrorWork
	case graph.KindLabel:
		return runtime.LabelWork
	default: // Series
		return runtime.SeriesWork
	}
}

// AssignCacheIDs gives every Cache instruction's CacheSlot a dense, unique
// index in walk order, so the runtime's per-slot cache table can be a plain
// slice.
//
// Grounded on original_source/src/core/transformation/cache_assignment.rs.
func AssignCacheIDs(p *graph.Parser) int {
	next := 0
	for _, id := range graph.Walk(p) {
		instr := p.Instructions.MustGet(id)
		if instr.Kind != graph.KindCache {
			continue
		}
		slot := next
		next++
		instr.CacheSlot = &slot
		p.Instructions.Set(id, instr)
	}
	return next
}
