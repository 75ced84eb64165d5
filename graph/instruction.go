package graph

// Kind discriminates an Instruction's variant.
type Kind byte

const (
	KindSeq Kind = iota
	KindChoice
	KindFirstChoice
	KindNotAhead
	KindError
	KindLabel
	KindDelegate
	KindSeries
	KindCache
)

func (k Kind) String() string {
	switch k {
	case KindSeq:
		return "seq"
	case KindChoice:
		return "choice"
	case KindFirstChoice:
		return "firstChoice"
	case KindNotAhead:
		return "notAhead"
	case KindError:
		return "error"
	case KindLabel:
		return "label"
	case KindDelegate:
		return "delegate"
	case KindSeries:
		return "series"
	case KindCache:
		return "cache"
	default:
		return "?"
	}
}

// Instruction is the tagged-variant IR node described in spec.md §3. It is
// a copy-cheap value: every field except CacheSlot is either an id or a
// plain scalar, so instructions are passed and stored by value throughout
// the graph package, mirroring original_source's `#[derive(Copy, Clone)]
// enum Instruction`.
type Instruction struct {
	Kind Kind

	// Seq, Choice, FirstChoice
	A, B InstructionID

	// NotAhead, Error, Label, Delegate, Cache target
	Target InstructionID

	// Error
	Expected ExpectedID
	// during load, before expected inference runs, Expected is not yet
	// meaningful: the raw pre-inference instruction id is kept here.
	PreInferenceExpected InstructionID

	// Label
	Label LabelID

	// Series
	Series SeriesID

	// Cache: nil until assign_cache_ids runs (§4.10); then a dense,
	// unique, non-negative slot index.
	CacheSlot *int
}

// Seq builds a Seq(a, b) instruction.
func Seq(a, b InstructionID) Instruction { return Instruction{Kind: KindSeq, A: a, B: b} }

// Choice builds a Choice(a, b) instruction.
func Choice(a, b InstructionID) Instruction { return Instruction{Kind: KindChoice, A: a, B: b} }

// FirstChoiceInstr builds a FirstChoice(a, b) instruction.
func FirstChoiceInstr(a, b InstructionID) Instruction {
	return Instruction{Kind: KindFirstChoice, A: a, B: b}
}

// NotAhead builds a NotAhead(t) instruction.
func NotAhead(t InstructionID) Instruction { return Instruction{Kind: KindNotAhead, Target: t} }

// ErrorInstr builds an Error(t, e) instruction, already past inference.
func ErrorInstr(t InstructionID, e ExpectedID) Instruction {
	return Instruction{Kind: KindError, Target: t, Expected: e}
}

// LabelInstr builds a Label(t, l) instruction.
func LabelInstr(t InstructionID, l LabelID) Instruction {
	return Instruction{Kind: KindLabel, Target: t, Label: l}
}

// Delegate builds a Delegate(t) instruction.
func Delegate(t InstructionID) Instruction { return Instruction{Kind: KindDelegate, Target: t} }

// SeriesInstr builds a Series(s) instruction.
func SeriesInstr(s SeriesID) Instruction { return Instruction{Kind: KindSeries, Series: s} }

// CacheInstr builds a Cache(t, slot) instruction; slot is nil until
// assign_cache_ids runs.
func CacheInstr(t InstructionID, slot *int) Instruction {
	return Instruction{Kind: KindCache, Target: t, CacheSlot: slot}
}

// Successors returns the instruction's direct references to other
// instructions, in source order, skipping Series (which is a leaf).
func (in Instruction) Successors() []InstructionID {
	switch in.Kind {
	case KindSeq, KindChoice, KindFirstChoice:
		return []InstructionID{in.A, in.B}
	case KindNotAhead, KindError, KindLabel, KindDelegate, KindCache:
		return []InstructionID{in.Target}
	default:
		return nil
	}
}

// Remapped returns a copy of in with every referenced InstructionID passed
// through mapper. Used by bulk id-rewrite operations (Parser.Remap,
// dedup's canonicalization, cache insertion's predecessor redirection).
func (in Instruction) Remapped(mapper func(InstructionID) InstructionID) Instruction {
	out := in
	switch in.Kind {
	case KindSeq, KindChoice, KindFirstChoice:
		out.A, out.B = mapper(in.A), mapper(in.B)
	case KindNotAhead, KindError, KindLabel, KindDelegate, KindCache:
		out.Target = mapper(in.Target)
	}
	return out
}
