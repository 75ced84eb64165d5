package graph

// ValidationError reports a left-recursive cycle rooted at Instruction.
type ValidationError struct {
	Instruction InstructionID
}

// Validate runs left-recursion detection over every instruction in
// p.Instructions (reachable from p.Start or not) and returns one ValidationError per distinct cycle root
// found. An empty result means the grammar is not left-recursive.
//
// Grounded on spec.md §4.5 and original_source/src/core/validation.rs's
// can_reach: for each instruction i, a depth-first walk follows only
// *potential* left edges (the ones that could run before any input is
// consumed) — for Seq(a,b), always a, and b only if a is transparent; for
// Choice(a,b), always a, and b only if a is fallible or error-prone; for
// FirstChoice(a,b), always a, and b only if a is fallible; NotAhead, Error,
// Label, Cache, Delegate follow their target; Series terminates the walk.
// Revisiting i with a non-empty visited set means i can call itself before
// consuming input: left recursion.
func (p *Parser) Validate() []ValidationError {
	var errs []ValidationError
	seen := make(map[InstructionID]struct{})

	chars := Characterize(p)

	p.Instructions.Each(func(id InstructionID, _ Instruction) {
		if hasLeftCycle(p, chars, id, id, make(map[InstructionID]struct{})) {
			if _, reported := seen[id]; !reported {
				seen[id] = struct{}{}
				errs = append(errs, ValidationError{Instruction: id})
			}
		}
	})
	return errs
}

func hasLeftCycle(p *Parser, chars map[InstructionID]Character, root, id InstructionID, visiting map[InstructionID]struct{}) bool {
	if _, ok := visiting[id]; ok {
		return id == root
	}
	visiting[id] = struct{}{}
	defer delete(visiting, id)

	instr := p.Instructions.MustGet(id)
	switch instr.Kind {
	case KindSeq:
		if hasLeftCycle(p, chars, root, instr.A, visiting) {
			return true
		}
		if chars[instr.A].Transparent {
			return hasLeftCycle(p, chars, root, instr.B, visiting)
		}
		return false
	case KindChoice:
		if hasLeftCycle(p, chars, root, instr.A, visiting) {
			return true
		}
		if secondReachableChoice(chars[instr.A]) {
			return hasLeftCycle(p, chars, root, instr.B, visiting)
		}
		return false
	case KindFirstChoice:
		if hasLeftCycle(p, chars, root, instr.A, visiting) {
			return true
		}
		if secondReachableFirstChoice(chars[instr.A]) {
			return hasLeftCycle(p, chars, root, instr.B, visiting)
		}
		return false
	case KindNotAhead, KindError, KindLabel, KindCache, KindDelegate:
		return hasLeftCycle(p, chars, root, instr.Target, visiting)
	default: // KindSeries
		return false
	}
}
