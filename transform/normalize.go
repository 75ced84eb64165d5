package transform

import "pegc/graph"

// Normalize runs the staged rewrite worklist of spec.md §4.8: three
// ordered stages of small local rewrites, each run to its own fixed point
// over a reverse-walk-seeded worklist, with Trim run between every stage.
// If any stage changed the graph, the whole stage sequence restarts; the
// loop returns once a full pass of all three stages changes nothing.
//
// Grounded on original_source/src/core/transformation/normalize.rs's
// STAGES table and State::run_passes driver (the worklist/predecessor-push
// shape below mirrors it line for line), merged with
// state_optimize.rs's mandates/forbids-driven instruction rewriting —
// simplified here to the character-only conditions spec.md §4.8 actually
// specifies, since that revision's full implication propagation computes a
// strictly richer (and here unneeded) precondition/postcondition lattice.
// lowerToFirstChoice, lowerToFirstChoiceWithoutSeq,
// translateUnnecessaryNonFirstChoice and eliminateDoubleNotAheads have no
// original_source analog at all; they're built from spec.md's own rule
// descriptions in the same pass-function idiom as their grounded
// neighbors.
func Normalize(p *graph.Parser, settings Settings) {
	type stage struct {
		passes         []rewritePass
		needsCharacter bool
	}
	stages := []stage{
		{passes: []rewritePass{resolveDelegate, lowerToFirstChoice, lowerToFirstChoiceWithoutSeq}},
		{
			needsCharacter: true,
			passes: []rewritePass{
				replaceByCharacter,
				eliminateRedundantSeqs,
				eliminateRedundantChoices,
				translateUnnecessaryNonFirstChoice,
				eliminateDoubleNotAheads,
				concatenateSeries,
				mergeSeriesPass,
			},
		},
		{passes: []rewritePass{normalizeJunctionOrder}},
	}

	for {
		changed := false
		for _, st := range stages {
			if runStage(p, st.passes, st.needsCharacter, settings) {
				changed = true
			}
			Trim(p)
		}
		if !changed {
			return
		}
	}
}

// rewritePass mirrors normalize.rs's `Pass`: given an instruction's current
// content, it either returns a replacement and true, or (graph.Instruction{}, false)
// to decline. A pass may mint new instructions via nf.insert; those are
// enqueued automatically.
type rewritePass func(nf *normalizeFrame, id graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool)

// normalizeFrame is the state threaded through one stage's run: the parser
// being rewritten, the worklist, and the character map the stage 2 passes
// consult (nil for stages that don't need it — reading a nil map is a
// harmless zero-value lookup in Go, so passes that never use it don't need
// to special-case it).
type normalizeFrame struct {
	p          *graph.Parser
	work       *normalizeWorklist
	characters map[graph.InstructionID]graph.Character
	settings   Settings
}

// insert adds a brand new instruction, enqueues it for this stage's
// worklist, and returns its id — used by the associativity rewrite to
// build the new right-hand junction.
func (nf *normalizeFrame) insert(instr graph.Instruction, symbol graph.DebugSymbol) graph.InstructionID {
	id := nf.p.Insert(instr, symbol)
	nf.work.push(id)
	return id
}

// runStage applies passes to every instruction reachable from p.Start,
// trying each pass in order per id and taking the first that fires,
// re-enqueuing predecessors (and any newly minted ids) whenever something
// changes, until the worklist drains. Characters are recomputed whenever
// the graph changes and a later pass in the stage needs them again —
// this repository trades the framework's documented incremental
// "predecessor-closure-only" patch for a full Characterize() recompute per
// change, which is strictly correct (full recompute is a superset of the
// incremental patch) and cheap at grammar scale.
func runStage(p *graph.Parser, passes []rewritePass, needsChar bool, settings Settings) bool {
	changed := false

	work := newNormalizeWorklist()
	order := graph.Walk(p)
	for i := len(order) - 1; i >= 0; i-- {
		work.push(order[i])
	}

	nf := &normalizeFrame{p: p, work: work, settings: settings}
	if needsChar {
		nf.characters = graph.Characterize(p)
	}
	preds := graph.Predecessors(p)

	for {
		id, ok := work.pop()
		if !ok {
			break
		}
		if !p.Instructions.Has(id) {
			continue
		}
		instr := p.Instructions.MustGet(id)

		for _, pass := range passes {
			newInstr, fired := pass(nf, id, instr)
			if !fired {
				continue
			}
			p.Instructions.Set(id, newInstr)
			changed = true

			for _, pred := range preds[id] {
				work.push(pred)
			}
			work.push(id)

			preds = graph.Predecessors(p)
			if needsChar {
				nf.characters = graph.Characterize(p)
			}
			break
		}
	}

	return changed
}

// normalizeWorklist is an insertion-ordered set of ids to (re)visit,
// shaped like graph's unexported orderedSet (package-private there, so
// this is a second small copy rather than an export) — the shared pattern
// spec.md §9 calls out across character analysis, dedup and normalize.
type normalizeWorklist struct {
	queue  []graph.InstructionID
	queued map[graph.InstructionID]struct{}
}

func newNormalizeWorklist() *normalizeWorklist {
	return &normalizeWorklist{queued: make(map[graph.InstructionID]struct{})}
}

func (w *normalizeWorklist) push(id graph.InstructionID) {
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.queue = append(w.queue, id)
}

func (w *normalizeWorklist) pop() (graph.InstructionID, bool) {
	if len(w.queue) == 0 {
		return 0, false
	}
	id := w.queue[0]
	w.queue = w.queue[1:]
	delete(w.queued, id)
	return id, true
}

// resolveDelegate collapses Delegate(t) by replacing its content with a
// copy of t's own instruction; any duplication this creates across ids is
// cleaned up by Deduplicate's later component-hash merge.
//
// Grounded on normalize.rs's State::resolve_delegate.
func resolveDelegate(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindDelegate {
		return graph.Instruction{}, false
	}
	return nf.p.Instructions.MustGet(instr.Target), true
}

// lowerToFirstChoice rewrites Choice(a, Seq(NotAhead(a), c)) to
// FirstChoice(a, c): the classic PEG "ordered choice as negative
// lookahead guard" idiom, recognized structurally.
func lowerToFirstChoice(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindChoice {
		return graph.Instruction{}, false
	}
	right := nf.p.Instructions.MustGet(instr.B)
	if right.Kind != graph.KindSeq {
		return graph.Instruction{}, false
	}
	guard := nf.p.Instructions.MustGet(right.A)
	if guard.Kind != graph.KindNotAhead || guard.Target != instr.A {
		return graph.Instruction{}, false
	}
	return graph.FirstChoiceInstr(instr.A, right.B), true
}

// lowerToFirstChoiceWithoutSeq rewrites Choice(a, NotAhead(a)) to
// FirstChoice(a, <empty series>) — the same idiom with nothing after the
// guard.
func lowerToFirstChoiceWithoutSeq(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindChoice {
		return graph.Instruction{}, false
	}
	right := nf.p.Instructions.MustGet(instr.B)
	if right.Kind != graph.KindNotAhead || right.Target != instr.A {
		return graph.Instruction{}, false
	}
	empty := nf.p.Series.Insert(graph.EmptySeries())
	return graph.FirstChoiceInstr(instr.A, nf.insert(graph.SeriesInstr(empty), graph.AnonymousSymbol())), true
}

// effectFree reports whether c's instruction can never consume input, emit
// a label, or emit an error — the "effect-free" condition several stage 2
// rewrites share.
func effectFree(c graph.Character) bool {
	return !c.Antitransparent && !c.LabelProne && !c.ErrorProne
}

// infallibleEffectFree additionally requires the instruction can never
// fail — "infallible and effect-free" in spec.md's wording.
func infallibleEffectFree(c graph.Character) bool {
	return !c.Fallible && effectFree(c)
}

// replaceByCharacter replaces an instruction by the canonical empty series
// if it is infallible and effect-free, or by the canonical never series if
// it can never succeed at all. Series instructions are exempt, since
// rewriting one series into another series wouldn't be progress.
//
// Grounded on state_optimize.rs's optimize_instruction: that revision
// tracks path-sensitive mandates/forbids preconditions; this rewrite uses
// only the instruction's own (path-insensitive) Character, a strictly
// weaker but still sound condition.
func replaceByCharacter(nf *normalizeFrame, id graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind == graph.KindSeries {
		return graph.Instruction{}, false
	}
	c := nf.characters[id]
	switch {
	case !c.Possible():
		return graph.SeriesInstr(nf.p.Series.Insert(graph.NeverSeries())), true
	case infallibleEffectFree(c):
		return graph.SeriesInstr(nf.p.Series.Insert(graph.EmptySeries())), true
	default:
		return graph.Instruction{}, false
	}
}

// eliminateRedundantSeqs collapses Seq(a,b) to whichever side isn't
// infallible-and-effect-free, when the other side is: an effect-free,
// always-succeeding side contributes nothing to the sequence.
func eliminateRedundantSeqs(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindSeq {
		return graph.Instruction{}, false
	}
	if infallibleEffectFree(nf.characters[instr.A]) {
		return nf.p.Instructions.MustGet(instr.B), true
	}
	if infallibleEffectFree(nf.characters[instr.B]) {
		return nf.p.Instructions.MustGet(instr.A), true
	}
	return graph.Instruction{}, false
}

// secondReachable reports whether a Choice/FirstChoice's second branch can
// ever be tried, given the first branch's character — the same predicate
// character analysis (§4.4) uses to gate its own Choice/FirstChoice rules.
func secondReachable(kind graph.Kind, a graph.Character) bool {
	if kind == graph.KindFirstChoice {
		return a.Fallible
	}
	return a.Fallible || a.ErrorProne
}

// eliminateRedundantChoices collapses a Choice or FirstChoice to its left
// side when the right side is unreachable, or to whichever side is
// possible when the other one never succeeds at all.
func eliminateRedundantChoices(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindChoice && instr.Kind != graph.KindFirstChoice {
		return graph.Instruction{}, false
	}
	ca, cb := nf.characters[instr.A], nf.characters[instr.B]
	switch {
	case !ca.Possible():
		return nf.p.Instructions.MustGet(instr.B), true
	case !secondReachable(instr.Kind, ca):
		return nf.p.Instructions.MustGet(instr.A), true
	case !cb.Possible():
		return nf.p.Instructions.MustGet(instr.A), true
	default:
		return graph.Instruction{}, false
	}
}

// translateUnnecessaryNonFirstChoice promotes a Choice to FirstChoice
// whenever its left branch is not error-prone: FirstChoice's commit-on-
// first-success semantics are then indistinguishable from Choice's, and
// FirstChoice needs one fewer interpreter stage.
func translateUnnecessaryNonFirstChoice(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindChoice {
		return graph.Instruction{}, false
	}
	if nf.characters[instr.A].ErrorProne {
		return graph.Instruction{}, false
	}
	return graph.FirstChoiceInstr(instr.A, instr.B), true
}

// eliminateDoubleNotAheads collapses NotAhead(NotAhead(t)) to t directly
// when t is effect-free-enough — two lookaheads cancel, and since neither
// can ever consume input, label, or error, discarding the outer pair loses
// nothing observable.
func eliminateDoubleNotAheads(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindNotAhead {
		return graph.Instruction{}, false
	}
	inner := nf.p.Instructions.MustGet(instr.Target)
	if inner.Kind != graph.KindNotAhead {
		return graph.Instruction{}, false
	}
	if !effectFree(nf.characters[inner.Target]) {
		return graph.Instruction{}, false
	}
	return nf.p.Instructions.MustGet(inner.Target), true
}

// asSeries returns instr's series value, if it is a Series instruction.
func asSeries(p *graph.Parser, instr graph.Instruction) (graph.Series, bool) {
	if instr.Kind != graph.KindSeries {
		return graph.Series{}, false
	}
	return p.Series.MustGet(instr.Series), true
}

// concatenateSeries folds Seq(Series(a), Series(b)) into a single
// Series(concat(a,b)), gated by Settings.MergeSeries just like the
// standalone MergeSeries pass — a caller that asked to skip series
// folding should see it skipped everywhere, not just in one of the two
// places it happens.
//
// Grounded on normalize.rs's State::concatenate_series.
func concatenateSeries(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if !nf.settings.MergeSeries || instr.Kind != graph.KindSeq {
		return graph.Instruction{}, false
	}
	as, ok := asSeries(nf.p, nf.p.Instructions.MustGet(instr.A))
	if !ok {
		return graph.Instruction{}, false
	}
	bs, ok := asSeries(nf.p, nf.p.Instructions.MustGet(instr.B))
	if !ok {
		return graph.Instruction{}, false
	}
	return graph.SeriesInstr(nf.p.Series.Insert(graph.Concatenate(as, bs))), true
}

// mergeSeriesPass folds Choice/FirstChoice(Series(a), Series(b)) into a
// single Series(merge(a,b)) when the two series are merge-compatible.
//
// Grounded on normalize.rs's State::merge_series.
func mergeSeriesPass(nf *normalizeFrame, _ graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if !nf.settings.MergeSeries || (instr.Kind != graph.KindChoice && instr.Kind != graph.KindFirstChoice) {
		return graph.Instruction{}, false
	}
	as, ok := asSeries(nf.p, nf.p.Instructions.MustGet(instr.A))
	if !ok {
		return graph.Instruction{}, false
	}
	bs, ok := asSeries(nf.p, nf.p.Instructions.MustGet(instr.B))
	if !ok {
		return graph.Instruction{}, false
	}
	merged, ok := graph.Merge(as, bs)
	if !ok {
		return graph.Instruction{}, false
	}
	return graph.SeriesInstr(nf.p.Series.Insert(merged)), true
}

// buildJunction constructs a Seq/Choice/FirstChoice instruction of the
// given kind over (a, b).
func buildJunction(kind graph.Kind, a, b graph.InstructionID) graph.Instruction {
	switch kind {
	case graph.KindSeq:
		return graph.Seq(a, b)
	case graph.KindFirstChoice:
		return graph.FirstChoiceInstr(a, b)
	default:
		return graph.Choice(a, b)
	}
}

// normalizeJunctionOrder rebalances a left-leaning Op(Op(a,b), c) to the
// right-heavy Op(a, Op(b,c)), for Seq, Choice and FirstChoice alike, as
// long as neither b nor c is itself the same Op kind (so each pair is
// rebalanced exactly once) and the rebalance wouldn't be a self-reference
// (old junction == c), which would otherwise blow the rewrite up
// indefinitely.
//
// Grounded on normalize.rs's normalize_seq_order/normalize_choice_order,
// generalized here to a single rewrite shared across all three junction
// kinds (that revision has no FirstChoice associativity rule; spec.md adds
// one).
func normalizeJunctionOrder(nf *normalizeFrame, id graph.InstructionID, instr graph.Instruction) (graph.Instruction, bool) {
	if instr.Kind != graph.KindSeq && instr.Kind != graph.KindChoice && instr.Kind != graph.KindFirstChoice {
		return graph.Instruction{}, false
	}
	oldJunction, c := instr.A, instr.B
	if oldJunction == c {
		return graph.Instruction{}, false
	}
	left := nf.p.Instructions.MustGet(oldJunction)
	if left.Kind != instr.Kind {
		return graph.Instruction{}, false
	}
	a, b := left.A, left.B
	if nf.p.Instructions.MustGet(b).Kind == instr.Kind {
		return graph.Instruction{}, false
	}
	if nf.p.Instructions.MustGet(c).Kind == instr.Kind {
		return graph.Instruction{}, false
	}

	newJunction := nf.insert(buildJunction(instr.Kind, b, c), nf.p.Symbol(id))
	return buildJunction(instr.Kind, a, newJunction), true
}
