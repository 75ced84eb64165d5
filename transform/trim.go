// Package transform implements the rewrite pipeline that turns a freshly
// loaded instruction graph into the compact, cache-annotated form the
// codegen package enumerates states from.
package transform

import "pegc/graph"

// Trim removes every instruction, series and label that p.Start cannot
// reach. Expecteds are left alone: every live Error instruction keeps
// exactly one, and an orphaned Expected is simply carried along (dedup
// remaps references to Expecteds but does not remove unreferenced ones).
//
// Grounded on original_source/src/core/transformation/trim.rs.
func Trim(p *graph.Parser) {
	reachable := make(map[graph.InstructionID]struct{})
	for _, id := range graph.Walk(p) {
		reachable[id] = struct{}{}
	}

	var removeInstrs []graph.InstructionID
	p.Instructions.Each(func(id graph.InstructionID, _ graph.Instruction) {
		if _, ok := reachable[id]; !ok {
			removeInstrs = append(removeInstrs, id)
		}
	})
	for _, id := range removeInstrs {
		p.Instructions.Remove(id)
	}

	usedSeries := make(map[graph.SeriesID]struct{})
	usedLabels := make(map[graph.LabelID]struct{})
	p.Instructions.Each(func(_ graph.InstructionID, in graph.Instruction) {
		switch in.Kind {
		case graph.KindSeries:
			usedSeries[in.Series] = struct{}{}
		case graph.KindLabel:
			usedLabels[in.Label] = struct{}{}
		}
	})

	var removeSeries []graph.SeriesID
	p.Series.Each(func(id graph.SeriesID, _ graph.Series) {
		if _, ok := usedSeries[id]; !ok {
			removeSeries = append(removeSeries, id)
		}
	})
	for _, id := range removeSeries {
		p.Series.Remove(id)
	}

	var removeLabels []graph.LabelID
	p.Labels.Each(func(id graph.LabelID, _ string) {
		if _, ok := usedLabels[id]; !ok {
			removeLabels = append(removeLabels, id)
		}
	})
	for _, id := range removeLabels {
		p.Labels.Remove(id)
	}
}
