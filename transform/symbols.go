package transform

import "pegc/graph"

// InferDebugSymbols propagates rule names onto the anonymous instructions
// a rewrite pass introduced, so later diagnostics (and left-recursion
// reports, if Validate ever needs to run again after a rewrite) still point
// at a name a grammar author wrote, not a synthetic id. An instruction with
// no name inherits the merged names of its (deduplicated) predecessors,
// iterated to a fixpoint.
//
// Grounded on
// original_source/src/core/transformation/debug_symbol_inference.rs.
func InferDebugSymbols(p *graph.Parser) {
	candidates := make(map[graph.InstructionID]struct{})
	for _, id := range graph.Walk(p) {
		if p.Symbol(id).Empty() {
			candidates[id] = struct{}{}
		}
	}

	preds := dedupedPredecessors(p)

	queue := make([]graph.InstructionID, 0, len(candidates))
	for id := range candidates {
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		predSymbols := make([]graph.DebugSymbol, 0, len(preds[id]))
		for _, pred := range preds[id] {
			predSymbols = append(predSymbols, p.Symbol(pred))
		}
		merged := graph.MergeSymbols(predSymbols...)
		merged = graph.MergeSymbols(merged, p.Symbol(id))

		if !symbolEqual(merged, p.Symbol(id)) {
			p.SetSymbol(id, merged)

			instr := p.Instructions.MustGet(id)
			for _, succ := range instr.Successors() {
				if _, ok := candidates[succ]; ok {
					queue = append(queue, succ)
				}
			}
		}
	}
}

func symbolEqual(a, b graph.DebugSymbol) bool {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return false
	}
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

// dedupedPredecessors is graph.Predecessors with duplicate edges collapsed,
// matching original_source's compute_predecessors (a HashMap<_, HashSet<_>>)
// as distinct from cache insertion's compute_duplicated_predecessors.
func dedupedPredecessors(p *graph.Parser) map[graph.InstructionID][]graph.InstructionID {
	raw := graph.Predecessors(p)
	out := make(map[graph.InstructionID][]graph.InstructionID, len(raw))
	for id, list := range raw {
		seen := make(map[graph.InstructionID]struct{}, len(list))
		var deduped []graph.InstructionID
		for _, pred := range list {
			if _, ok := seen[pred]; !ok {
				seen[pred] = struct{}{}
				deduped = append(deduped, pred)
			}
		}
		out[id] = deduped
	}
	return out
}
