package graph

// InferExpected computes, for every Error instruction currently holding a
// pre-inference target id (the PreInferenceExpected field the loader
// populated), the Expected set reachable from that id, interns it, and
// replaces the instruction's Expected field with the resulting id.
//
// Must run before any pass that would dedup or remove the instructions
// referenced by pre-inference error fields (spec.md §4.6) — in practice,
// this means InferExpected always runs as the last step of Load, before
// the transform package ever sees the graph.
//
// Grounded on original_source/src/core/transformation/expected_inference.rs
// (the driver) and expected.rs (the per-instruction walk rules).
func (p *Parser) InferExpected() error {
	chars := Characterize(p)

	// cache computed Expected per root id, since several Error instructions
	// may share the same pre-inference target.
	memo := make(map[InstructionID]Expected)

	var walk func(InstructionID, *Expected, map[InstructionID]struct{})
	walk = func(id InstructionID, out *Expected, visiting map[InstructionID]struct{}) {
		if _, ok := visiting[id]; ok {
			return
		}
		visiting[id] = struct{}{}
		defer delete(visiting, id)

		instr := p.Instructions.MustGet(id)
		switch instr.Kind {
		case KindLabel:
			out.AddLabel(instr.Label)
		case KindSeries:
			s := p.Series.MustGet(instr.Series)
			addSeriesExpectation(out, s)
		case KindSeq:
			walk(instr.A, out, visiting)
			if chars[instr.A].Transparent {
				walk(instr.B, out, visiting)
			}
		case KindChoice, KindFirstChoice:
			walk(instr.A, out, visiting)
			walk(instr.B, out, visiting)
		case KindNotAhead:
			// contributes nothing: a NotAhead's target never actually
			// consumes/produces the surface syntax being "expected".
		case KindError, KindDelegate, KindCache:
			walk(instr.Target, out, visiting)
		}
	}

	p.Instructions.Each(func(id InstructionID, instr Instruction) {
		if instr.Kind != KindError {
			return
		}
		root := instr.PreInferenceExpected
		expected, ok := memo[root]
		if !ok {
			e := NewExpected()
			walk(root, &e, make(map[InstructionID]struct{}))
			expected = e
			memo[root] = expected
		}
		eid := internExpected(p, expected)
		updated := instr
		updated.Expected = eid
		p.Instructions.Set(id, updated)
	})

	return nil
}

// internExpected returns the id of an Expected equal to e, inserting a new
// entry only if none already matches.
func internExpected(p *Parser, e Expected) ExpectedID {
	var found ExpectedID
	ok := false
	p.Expecteds.Each(func(id ExpectedID, existing Expected) {
		if !ok && existing.Equal(e) {
			found, ok = id, true
		}
	})
	if ok {
		return found
	}
	return p.Expecteds.Insert(e)
}

// addSeriesExpectation adds a series' literal derivation to out, per
// spec.md §4.6: if every class is a singleton byte, the whole series
// contributes one multi-byte literal; otherwise, for a positive first
// class, each singleton range in that class contributes a one-byte
// literal.
func addSeriesExpectation(out *Expected, s Series) {
	if s.IsEmpty() || s.IsNever() {
		return
	}
	if lit, ok := s.Literal(); ok {
		out.AddLiteral(lit)
		return
	}
	first := s.Classes()[0]
	if first.Negated() {
		return
	}
	for _, r := range first.Ranges() {
		if r.lo == r.hi {
			out.AddLiteral(string(r.lo))
		}
	}
}
