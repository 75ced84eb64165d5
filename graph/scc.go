package graph

// Component is one strongly connected component of the instruction graph:
// its members, and the ids each member references that lie in a different
// component.
type Component struct {
	ID         int
	Members    []InstructionID
	CrossRefs  map[InstructionID][]InstructionID
}

// SeparateComponents runs Kosaraju's algorithm over the subgraph reachable
// from p.Start, returning each instruction's component id and the ordered
// list of components in topological order: Start's component comes first,
// and every component appears before the components it references. Dedup
// (spec.md §4.9) does not depend on this order; it reaches referenced
// components first by recursing through CrossRefs.
func SeparateComponents(p *Parser) (componentOf map[InstructionID]int, components []Component) {
	order := Walk(p)
	preds := Predecessors(p)

	// pass 1: compute finish order via DFS on the forward graph.
	visited := make(map[InstructionID]struct{})
	var finished []InstructionID
	var visit func(InstructionID)
	visit = func(id InstructionID) {
		if _, ok := visited[id]; ok {
			return
		}
		visited[id] = struct{}{}
		for _, succ := range p.Instructions.MustGet(id).Successors() {
			visit(succ)
		}
		finished = append(finished, id)
	}
	for _, id := range order {
		visit(id)
	}

	// pass 2: DFS on the reverse graph (via preds) in reverse finish order.
	componentOf = make(map[InstructionID]int)
	assigned := make(map[InstructionID]struct{})
	var assign func(InstructionID, int, *[]InstructionID)
	assign = func(id InstructionID, comp int, members *[]InstructionID) {
		if _, ok := assigned[id]; ok {
			return
		}
		assigned[id] = struct{}{}
		componentOf[id] = comp
		*members = append(*members, id)
		for _, pred := range preds[id] {
			assign(pred, comp, members)
		}
	}

	for i := len(finished) - 1; i >= 0; i-- {
		id := finished[i]
		if _, ok := assigned[id]; ok {
			continue
		}
		comp := len(components)
		var members []InstructionID
		assign(id, comp, &members)
		components = append(components, Component{ID: comp, Members: members})
	}

	// cross-component references, computed after every member is assigned.
	for i := range components {
		cr := make(map[InstructionID][]InstructionID)
		for _, id := range components[i].Members {
			for _, succ := range p.Instructions.MustGet(id).Successors() {
				if componentOf[succ] != components[i].ID {
					cr[id] = append(cr[id], succ)
				}
			}
		}
		components[i].CrossRefs = cr
	}

	// The second pass walks `finished` back-to-front, so it starts from the
	// last-finished instruction (a source, p.Start) and emits components in
	// source-to-sink order; they are returned in that order.
	return componentOf, components
}
