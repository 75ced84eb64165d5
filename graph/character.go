package graph

// Character is the five-boolean abstraction of an instruction's possible
// outcomes, computed by fixpoint (spec.md §4.4). Possible is derived, not
// stored: Possible() := Transparent || Antitransparent.
type Character struct {
	Transparent     bool
	Antitransparent bool
	Fallible        bool
	LabelProne      bool
	ErrorProne      bool
}

// Possible reports whether the instruction can ever succeed at all.
func (c Character) Possible() bool { return c.Transparent || c.Antitransparent }

// Characterize computes the Character of every instruction reachable from
// p.Start via the monotone worklist fixpoint described in spec.md §4.4.
//
// Grounded on original_source/src/core/character.rs (3-boolean revision),
// generalized here to the 5-boolean lattice spec.md specifies, adding
// FirstChoice, Label and Cache/Delegate's identity rules.
func Characterize(p *Parser) map[InstructionID]Character {
	preds := Predecessors(p)

	return solveFixedPoint(p, preds, func(id InstructionID, instr Instruction, states map[InstructionID]Character) Character {
		switch instr.Kind {
		case KindSeries:
			return characterizeSeries(p, instr)
		case KindNotAhead:
			t := states[instr.Target]
			return Character{
				Transparent: t.Fallible,
				Fallible:    t.Possible(),
			}
		case KindSeq:
			a, b := states[instr.A], states[instr.B]
			possible := a.Possible() && b.Possible()
			return Character{
				Transparent:     a.Transparent && b.Transparent && possible,
				Antitransparent: (a.Antitransparent || b.Antitransparent) && possible,
				Fallible:        a.Fallible || b.Fallible,
				LabelProne:      (a.LabelProne || b.LabelProne) && possible,
				ErrorProne:      (a.ErrorProne || b.ErrorProne) && possible,
			}
		case KindChoice:
			return characterizeBranch(states[instr.A], states[instr.B], secondReachableChoice)
		case KindFirstChoice:
			return characterizeBranch(states[instr.A], states[instr.B], secondReachableFirstChoice)
		case KindLabel:
			t := states[instr.Target]
			return Character{
				Transparent:     t.Transparent,
				Antitransparent: t.Antitransparent,
				Fallible:        t.Fallible,
				ErrorProne:      t.ErrorProne,
				LabelProne:      t.Possible(),
			}
		case KindError:
			t := states[instr.Target]
			return Character{
				Transparent:     t.Transparent,
				Antitransparent: t.Antitransparent,
				Fallible:        t.Fallible,
				LabelProne:      t.LabelProne,
				ErrorProne:      t.Possible(),
			}
		case KindCache, KindDelegate:
			return states[instr.Target]
		default:
			return Character{}
		}
	})
}

func characterizeSeries(p *Parser, instr Instruction) Character {
	s := p.Series.MustGet(instr.Series)
	switch {
	case s.IsEmpty():
		return Character{Transparent: true}
	case s.IsNever():
		return Character{}
	default:
		return Character{Antitransparent: true, Fallible: true}
	}
}

func secondReachableChoice(a Character) bool    { return a.Fallible || a.ErrorProne }
func secondReachableFirstChoice(a Character) bool { return a.Fallible }

func characterizeBranch(a, b Character, secondReachable func(Character) bool) Character {
	reachable := secondReachable(a)
	return Character{
		Transparent:     a.Transparent || (reachable && b.Transparent),
		Antitransparent: a.Antitransparent || (reachable && b.Antitransparent),
		Fallible:        a.Fallible && b.Fallible,
		LabelProne:      a.LabelProne || (reachable && b.LabelProne),
		ErrorProne:      a.ErrorProne || (reachable && b.ErrorProne),
	}
}
