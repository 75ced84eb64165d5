package transform

import "pegc/graph"

// MergeSeries folds two adjacent Series reads into one wherever the graph
// shape allows it, removing an instruction dispatch (and, for Seq, an
// intermediate state) per fold:
//
//   - Seq(Series(a), Series(b))    -> Series(concat(a, b))
//   - Choice(Series(a), Series(b)) -> Series(merge(a, b)), when the two
//     series are the same length and either share all but their last class
//     or are componentwise comparable (graph.Merge)
//
// The Seq fold is grounded directly on
// original_source/src/core/transformation/merge_series.rs, whose `merge`
// (despite the name) concatenates the two series end to end — it is exactly
// graph.Concatenate under a different name in that revision. The Choice
// fold has no analogue there (that revision's Series has no union-capable
// merge); it is this repository's generalization of the same fold to
// graph.Merge, the union/superset operation spec.md's character
// analysis already requires for Choice reasoning.
//
// Runs bottom-up (reverse walk order) so a fold performed deep in the graph
// is visible to a fold being considered over it in the same pass.
func MergeSeries(p *graph.Parser) {
	mapping := make(map[graph.InstructionID]graph.InstructionID)

	order := graph.Walk(p)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		instr := p.Instructions.MustGet(id)

		var combine func(a, b graph.Series) (graph.Series, bool)
		switch instr.Kind {
		case graph.KindSeq:
			combine = func(a, b graph.Series) (graph.Series, bool) { return graph.Concatenate(a, b), true }
		case graph.KindChoice, graph.KindFirstChoice:
			combine = graph.Merge
		default:
			continue
		}

		folded, ok := foldSeries(p, instr.A, instr.B, mapping, combine)
		if !ok {
			continue
		}

		sid := p.Series.Insert(folded)
		newID := p.Insert(graph.SeriesInstr(sid), p.Symbol(id))
		mapping[id] = newID
	}

	p.Remap(func(id graph.InstructionID) graph.InstructionID {
		return followMappings(id, mapping)
	})
	Trim(p)
}

func foldSeries(
	p *graph.Parser,
	aID, bID graph.InstructionID,
	mapping map[graph.InstructionID]graph.InstructionID,
	combine func(a, b graph.Series) (graph.Series, bool),
) (graph.Series, bool) {
	aID = followMappings(aID, mapping)
	bID = followMappings(bID, mapping)

	a := p.Instructions.MustGet(aID)
	if a.Kind != graph.KindSeries {
		return graph.Series{}, false
	}
	b := p.Instructions.MustGet(bID)
	if b.Kind != graph.KindSeries {
		return graph.Series{}, false
	}

	as := p.Series.MustGet(a.Series)
	bs := p.Series.MustGet(b.Series)
	return combine(as, bs)
}
