package transform

import "pegc/graph"

// ResolveDelegates replaces every reference to a Delegate instruction with a
// reference to whatever it ultimately points at (following chains of
// delegates), then trims the now-unreferenced delegate nodes away.
// Delegates only exist to let the loader resolve forward/recursive rule
// references before every instruction id is known; once the whole graph is
// built they carry no information a direct reference couldn't.
//
// Grounded on original_source/src/core/transformation/delegate_elimination.rs.
func ResolveDelegates(p *graph.Parser) {
	mapping := make(map[graph.InstructionID]graph.InstructionID)

	var resolve func(graph.InstructionID) graph.InstructionID
	resolve = func(id graph.InstructionID) graph.InstructionID {
		instr := p.Instructions.MustGet(id)
		if instr.Kind != graph.KindDelegate {
			return id
		}
		return resolve(instr.Target)
	}

	p.Instructions.Each(func(id graph.InstructionID, _ graph.Instruction) {
		if resolved := resolve(id); resolved != id {
			mapping[id] = resolved
		}
	})

	p.Remap(func(id graph.InstructionID) graph.InstructionID {
		return followMappings(id, mapping)
	})
	Trim(p)
}

// followMappings repeatedly looks id up in mappings until it names a key
// that is not itself mapped further, returning id unchanged if it was never
// mapped at all.
func followMappings(id graph.InstructionID, mappings map[graph.InstructionID]graph.InstructionID) graph.InstructionID {
	for {
		next, ok := mappings[id]
		if !ok {
			return id
		}
		id = next
	}
}
