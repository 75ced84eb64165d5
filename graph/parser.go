package graph

import "fmt"

// Parser owns the whole instruction graph: the start id, the four stores,
// and the debug symbol map (spec.md §3). An instruction's position in its
// store is its identity; bulk relabelling is performed by Remap under a
// caller-provided mapping function, never by mutating ids in place.
//
// Grounded on original_source/src/core/mod.rs's Parser struct.
type Parser struct {
	Start InstructionID

	Instructions *Store[InstructionID, Instruction]
	Series       *Store[SeriesID, Series]
	Labels       *Store[LabelID, string]
	Expecteds    *Store[ExpectedID, Expected]

	symbols map[InstructionID]DebugSymbol
}

// New returns an empty Parser, used by the loader while it builds up the
// graph.
func New() *Parser {
	return &Parser{
		Instructions: NewStore[InstructionID, Instruction](),
		Series:       NewStore[SeriesID, Series](),
		Labels:       NewStore[LabelID, string](),
		Expecteds:    NewStore[ExpectedID, Expected](),
		symbols:      make(map[InstructionID]DebugSymbol),
	}
}

// Insert reserves an instruction id, installs instruction and symbol, and
// returns the new id.
func (p *Parser) Insert(instr Instruction, symbol DebugSymbol) InstructionID {
	id := p.Instructions.Reserve()
	p.Instructions.Set(id, instr)
	p.symbols[id] = symbol
	return id
}

// Symbol returns the debug symbol attached to id, or an anonymous symbol if
// none was ever set.
func (p *Parser) Symbol(id InstructionID) DebugSymbol {
	if s, ok := p.symbols[id]; ok {
		return s
	}
	return AnonymousSymbol()
}

// SetSymbol overwrites id's debug symbol.
func (p *Parser) SetSymbol(id InstructionID, symbol DebugSymbol) {
	p.symbols[id] = symbol
}

// MergeSymbol merges other into id's existing symbol.
func (p *Parser) MergeSymbol(id InstructionID, other DebugSymbol) {
	p.symbols[id] = MergeSymbols(p.Symbol(id), other)
}

// Remap rewrites every InstructionID referenced anywhere in the graph
// (instruction successors, Start, and the debug symbol map's keys) through
// mapper. Used by dedup and by Sort to compact/reorder the id space.
//
// Grounded on original_source/src/core/mod.rs's Parser::remap.
func (p *Parser) Remap(mapper func(InstructionID) InstructionID) {
	newSymbols := make(map[InstructionID]DebugSymbol, len(p.symbols))
	for id := range p.symbols {
		newID := mapper(id)
		newSymbols[newID] = MergeSymbols(newSymbols[newID], p.symbols[id])
	}
	p.symbols = newSymbols

	newInstrs := NewStore[InstructionID, Instruction]()
	p.Instructions.Each(func(id InstructionID, instr Instruction) {
		newInstrs.Set(mapper(id), instr.Remapped(mapper))
	})
	p.Instructions = newInstrs

	p.Start = mapper(p.Start)
}

// Error is returned by Load when the IR is malformed or the grammar is
// left-recursive. It is always one of *LoadError or *LeftRecursiveError.
type Error interface {
	error
	isGraphError()
}

// LoadError reports malformed IR: bad JSON, an unknown instruction id, a
// version mismatch, or a badly-formed label.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) isGraphError() {}

// LeftRecursiveError reports that validation found at least one
// left-recursive cycle; Names lists the rule names (from debug symbols)
// reachable from the offending instructions.
type LeftRecursiveError struct {
	Names []string
}

func (e *LeftRecursiveError) Error() string {
	return fmt.Sprintf("left-recursive rule(s): %v", e.Names)
}
func (e *LeftRecursiveError) isGraphError() {}
