package transform

import (
	"hash/maphash"

	"pegc/graph"
)

// Deduplicate interns identical series, labels and expecteds, then collapses
// structurally identical subgraphs (by strongly connected component) into a
// single shared copy, and trims what falls out of reach as a result.
//
// Grounded on original_source/src/core/transformation/deduplication.rs.
func Deduplicate(p *graph.Parser) {
	dedupSeries(p)
	dedupLabels(p)
	dedupExpecteds(p)
	dedupComponents(p)
	Trim(p)
}

func dedupSeries(p *graph.Parser) {
	canonicals := make(map[string]graph.SeriesID)
	mapping := make(map[graph.SeriesID]graph.SeriesID)
	p.Series.Each(func(id graph.SeriesID, s graph.Series) {
		key := seriesKey(s)
		if canon, ok := canonicals[key]; ok {
			mapping[id] = canon
		} else {
			canonicals[key] = id
			mapping[id] = id
		}
	})

	var updates []struct {
		id graph.InstructionID
		in graph.Instruction
	}
	p.Instructions.Each(func(id graph.InstructionID, in graph.Instruction) {
		if in.Kind == graph.KindSeries {
			if mapped, ok := mapping[in.Series]; ok && mapped != in.Series {
				in.Series = mapped
				updates = append(updates, struct {
					id graph.InstructionID
					in graph.Instruction
				}{id, in})
			}
		}
	})
	for _, u := range updates {
		p.Instructions.Set(u.id, u.in)
	}
}

func dedupLabels(p *graph.Parser) {
	canonicals := make(map[string]graph.LabelID)
	mapping := make(map[graph.LabelID]graph.LabelID)
	p.Labels.Each(func(id graph.LabelID, name string) {
		if canon, ok := canonicals[name]; ok {
			mapping[id] = canon
		} else {
			canonicals[name] = id
			mapping[id] = id
		}
	})

	var updates []struct {
		id graph.InstructionID
		in graph.Instruction
	}
	p.Instructions.Each(func(id graph.InstructionID, in graph.Instruction) {
		if in.Kind == graph.KindLabel {
			if mapped, ok := mapping[in.Label]; ok && mapped != in.Label {
				in.Label = mapped
				updates = append(updates, struct {
					id graph.InstructionID
					in graph.Instruction
				}{id, in})
			}
		}
	})
	for _, u := range updates {
		p.Instructions.Set(u.id, u.in)
	}
}

func dedupExpecteds(p *graph.Parser) {
	var ids []graph.ExpectedID
	canonicals := make(map[int]graph.ExpectedID) // index into ids of the first equal value
	mapping := make(map[graph.ExpectedID]graph.ExpectedID)

	p.Expecteds.Each(func(id graph.ExpectedID, e graph.Expected) {
		for i, other := range ids {
			existing := p.Expecteds.MustGet(other)
			if existing.Equal(e) {
				mapping[id] = canonicals[i]
				return
			}
		}
		canonicals[len(ids)] = id
		mapping[id] = id
		ids = append(ids, id)
	})

	var updates []struct {
		id graph.InstructionID
		in graph.Instruction
	}
	p.Instructions.Each(func(id graph.InstructionID, in graph.Instruction) {
		if in.Kind == graph.KindError {
			if mapped, ok := mapping[in.Expected]; ok && mapped != in.Expected {
				in.Expected = mapped
				updates = append(updates, struct {
					id graph.InstructionID
					in graph.Instruction
				}{id, in})
			}
		}
	})
	for _, u := range updates {
		p.Instructions.Set(u.id, u.in)
	}
}

// seriesKey renders a series to a string unique to its content, suitable as
// a map key (Series and Class hold unexported slice fields, so they are not
// map-key-comparable as struct values). Class.String() already renders the
// full (negated, ranges) content unambiguously, so it doubles as a identity
// key here.
func seriesKey(s graph.Series) string {
	var sb []byte
	for _, c := range s.Classes() {
		sb = append(sb, c.String()...)
		sb = append(sb, ';')
	}
	return string(sb)
}

// dedupComponents collapses structurally identical strongly connected
// components (by a content hash that follows cross-component references
// through whatever mapping dedup has built up so far) into one
// representative, processing components bottom-up so a component's
// cross-references are already canonical by the time it is hashed.
func dedupComponents(p *graph.Parser) {
	componentOf, components := graph.SeparateComponents(p)
	byID := make(map[int]graph.Component, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}

	mapping := make(map[graph.InstructionID]graph.InstructionID)
	canonicals := make(map[uint64]graph.InstructionID)
	visited := make(map[int]struct{})

	var visitComponent func(start graph.InstructionID)
	visitComponent = func(start graph.InstructionID) {
		comp := byID[componentOf[start]]
		if _, ok := visited[comp.ID]; ok {
			return
		}
		visited[comp.ID] = struct{}{}

		for _, successors := range comp.CrossRefs {
			for _, succ := range successors {
				visitComponent(succ)
			}
		}

		canonicalizeComponentInstructions(p, comp, mapping)

		h := componentHash(p, start, comp, mapping)
		if replacement, ok := canonicals[h]; ok {
			reassignComponent(p, start, comp, replacement, byID[componentOf[replacement]], mapping)
		} else {
			// no match: register a canonical hash for every member, not just
			// start, so a later component entered through a different
			// member of this one still finds the match.
			for _, member := range comp.Members {
				canonicals[componentHash(p, member, comp, mapping)] = member
			}
		}
	}

	visitComponent(p.Start)

	p.Remap(func(id graph.InstructionID) graph.InstructionID {
		return followMappings(id, mapping)
	})
}

// canonicalizeComponentInstructions dedups instructions that are
// structurally identical (after following the current mapping) within a
// single component, ignoring cycles through the component's own members.
func canonicalizeComponentInstructions(p *graph.Parser, comp graph.Component, mapping map[graph.InstructionID]graph.InstructionID) {
	members := make(map[graph.InstructionID]struct{}, len(comp.Members))
	for _, m := range comp.Members {
		members[m] = struct{}{}
	}
	unvisited := make(map[graph.InstructionID]struct{}, len(comp.Members))
	for _, m := range comp.Members {
		unvisited[m] = struct{}{}
	}

	canonicals := make(map[string]graph.InstructionID)

	var visit func(graph.InstructionID)
	visit = func(id graph.InstructionID) {
		if _, ok := unvisited[id]; !ok {
			return
		}
		delete(unvisited, id)

		instr := p.Instructions.MustGet(id)
		for _, succ := range instr.Successors() {
			if _, ok := members[succ]; ok {
				visit(succ)
			}
		}

		canonical := instr.Remapped(func(rid graph.InstructionID) graph.InstructionID { return followMappings(rid, mapping) })
		key := instructionKey(canonical)
		if replacement, ok := canonicals[key]; ok {
			mapping[id] = replacement
		} else {
			canonicals[key] = id
		}
	}

	for _, m := range comp.Members {
		visit(m)
	}
}

// instructionKey renders an instruction to a string unique to its (Kind,
// fields) tuple, used as a map key for exact-duplicate instruction folding.
func instructionKey(in graph.Instruction) string {
	buf := make([]byte, 0, 24)
	buf = append(buf, byte(in.Kind))
	put := func(id graph.InstructionID) {
		buf = appendUint32(buf, uint32(id))
	}
	switch in.Kind {
	case graph.KindSeq, graph.KindChoice, graph.KindFirstChoice:
		put(in.A)
		put(in.B)
	case graph.KindNotAhead, graph.KindDelegate:
		put(in.Target)
	case graph.KindError:
		put(in.Target)
		buf = appendUint32(buf, uint32(in.Expected))
	case graph.KindLabel:
		put(in.Target)
		buf = appendUint32(buf, uint32(in.Label))
	case graph.KindCache:
		put(in.Target)
	case graph.KindSeries:
		buf = appendUint32(buf, uint32(in.Series))
	}
	return string(buf)
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

var componentHashSeed = maphash.MakeSeed()

// componentHash is the structural hash from spec.md §4.9 / original_source's
// create_canonical_hash: a DFS from start that, for a reference back to an
// already-visited member, hashes a backreference index instead of recursing
// (a de-Bruijn-style cycle encoding that makes isomorphic cyclic components
// hash identically regardless of which member they were entered from), and
// for a reference leaving the component, hashes the (mapped) target id
// directly, since by the time a component is processed every component it
// points to has already been canonicalized.
func componentHash(p *graph.Parser, start graph.InstructionID, comp graph.Component, mapping map[graph.InstructionID]graph.InstructionID) uint64 {
	members := make(map[graph.InstructionID]struct{}, len(comp.Members))
	for _, m := range comp.Members {
		members[m] = struct{}{}
	}

	var h maphash.Hash
	h.SetSeed(componentHashSeed)
	backrefs := make(map[graph.InstructionID]int)

	var queue []graph.InstructionID
	queue = append(queue, followMappings(start, mapping))

	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if idx, ok := backrefs[id]; ok {
			h.WriteByte(0)
			h.Write(appendUint32(nil, uint32(idx)))
			continue
		}
		backrefs[id] = len(backrefs)

		instr := p.Instructions.MustGet(id)
		h.WriteByte(1)
		h.WriteByte(byte(instr.Kind))
		switch instr.Kind {
		case graph.KindError:
			h.Write(appendUint32(nil, uint32(instr.Expected)))
		case graph.KindLabel:
			h.Write(appendUint32(nil, uint32(instr.Label)))
		case graph.KindSeries:
			h.Write(appendUint32(nil, uint32(instr.Series)))
		}

		for _, succ := range instr.Successors() {
			succ = followMappings(succ, mapping)
			if _, ok := members[succ]; ok {
				h.WriteByte(3)
				queue = append(queue, succ)
			} else {
				h.WriteByte(2)
				h.Write(appendUint32(nil, uint32(succ)))
			}
		}
	}

	return h.Sum64()
}

// reassignComponent walks sourceRoot's and destRoot's components in lock
// step and records every (source, dest) instruction pair as a mapping; the
// two components are already known to be structurally equal (same
// componentHash), so their successor shapes line up member for member.
func reassignComponent(p *graph.Parser, sourceRoot graph.InstructionID, sourceComp graph.Component, destRoot graph.InstructionID, destComp graph.Component, mapping map[graph.InstructionID]graph.InstructionID) {
	sourceMembers := make(map[graph.InstructionID]struct{}, len(sourceComp.Members))
	for _, m := range sourceComp.Members {
		sourceMembers[m] = struct{}{}
	}
	destMembers := make(map[graph.InstructionID]struct{}, len(destComp.Members))
	for _, m := range destComp.Members {
		destMembers[m] = struct{}{}
	}

	type pair struct{ source, dest graph.InstructionID }
	queue := []pair{{followMappings(sourceRoot, mapping), followMappings(destRoot, mapping)}}
	visited := make(map[graph.InstructionID]struct{})
	var newMappings []pair

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		_, sourceSeen := visited[cur.source]
		_, destSeen := visited[cur.dest]
		if sourceSeen || destSeen {
			continue
		}
		visited[cur.source] = struct{}{}
		visited[cur.dest] = struct{}{}

		sourceInstr := p.Instructions.MustGet(cur.source)
		destInstr := p.Instructions.MustGet(cur.dest)

		sourceSuccs := sourceInstr.Successors()
		destSuccs := destInstr.Successors()
		for i := range sourceSuccs {
			if i >= len(destSuccs) {
				break
			}
			ss := followMappings(sourceSuccs[i], mapping)
			ds := followMappings(destSuccs[i], mapping)
			_, sIn := sourceMembers[ss]
			_, dIn := destMembers[ds]
			if sIn && dIn {
				queue = append(queue, pair{ss, ds})
			}
		}

		newMappings = append(newMappings, cur)
	}

	for _, m := range newMappings {
		mapping[m.source] = m.dest
	}
}
