package graph

// Walk returns every instruction reachable from p.Start, visited once each,
// in depth-first source order (successors are visited in the order they
// appear on the instruction, matching the order the emitted dispatcher
// assigns states in). Grounded on original_source/src/core/walk.rs.
func Walk(p *Parser) []InstructionID {
	var order []InstructionID
	visited := make(map[InstructionID]struct{})

	var visit func(InstructionID)
	visit = func(id InstructionID) {
		if _, ok := visited[id]; ok {
			return
		}
		visited[id] = struct{}{}
		order = append(order, id)
		instr := p.Instructions.MustGet(id)
		for _, succ := range instr.Successors() {
			visit(succ)
		}
	}

	if p.Instructions.Has(p.Start) {
		visit(p.Start)
	}
	return order
}

// Predecessors returns, for every instruction reachable from start, the set
// of ids that directly reference it (as a successor). Unreferenced
// reachable instructions (e.g. start itself, if nothing points to it) get
// an empty, but present, slice — callers can rely on every reachable id
// being a key.
func Predecessors(p *Parser) map[InstructionID][]InstructionID {
	preds := make(map[InstructionID][]InstructionID)
	order := Walk(p)
	for _, id := range order {
		if _, ok := preds[id]; !ok {
			preds[id] = nil
		}
	}
	for _, id := range order {
		instr := p.Instructions.MustGet(id)
		for _, succ := range instr.Successors() {
			preds[succ] = append(preds[succ], id)
		}
	}
	return preds
}
