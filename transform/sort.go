package transform

import "pegc/graph"

// Sort relabels every instruction to its depth-first visitation order from
// p.Start, so the start instruction is always id 0 and a reader walking the
// store in id order sees the grammar roughly top to bottom. Purely
// cosmetic — nothing downstream depends on the numbering — but cheap enough
// to run after every structural pass so dumps and generated state tables
// stay readable.
//
// Callers must Trim before Sort: Remap only has a mapping for instructions
// Walk finds, so an un-trimmed unreachable instruction would keep its old
// id and could collide with a freshly assigned one.
//
// Grounded on original_source/src/core/transformation/sort.rs.
func Sort(p *graph.Parser) {
	mapping := make(map[graph.InstructionID]graph.InstructionID)
	order := graph.Walk(p)
	for i, id := range order {
		mapping[id] = graph.InstructionID(i)
	}
	p.Remap(func(id graph.InstructionID) graph.InstructionID {
		if mapped, ok := mapping[id]; ok {
			return mapped
		}
		return id
	})
}
