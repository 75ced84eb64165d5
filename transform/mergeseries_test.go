package transform

import (
	"testing"

	"pegc/graph"
)

func singleClassSeriesInstr(p *graph.Parser, lo, hi byte) graph.InstructionID {
	c := graph.NewClass(false)
	c.Insert(lo, hi)
	var s graph.Series
	s = s.Append(c)
	sid := p.Series.Insert(s)
	return p.Insert(graph.SeriesInstr(sid), graph.AnonymousSymbol())
}

func seriesOf(t *testing.T, p *graph.Parser, id graph.InstructionID) graph.Series {
	t.Helper()
	in := p.Instructions.MustGet(id)
	if in.Kind != graph.KindSeries {
		t.Fatalf("instruction %v is not a series, got kind %v", id, in.Kind)
	}
	return p.Series.MustGet(in.Series)
}

func TestMergeSeriesFoldsSeqOfTwoSeries(t *testing.T) {
	p := graph.New()
	digit := singleClassSeriesInstr(p, '0', '9')
	plus := singleClassSeriesInstr(p, '+', '+')
	seq := p.Insert(graph.Seq(digit, plus), graph.AnonymousSymbol())
	p.Start = seq

	MergeSeries(p)

	folded := seriesOf(t, p, p.Start)
	if folded.Len() != 2 {
		t.Fatalf("expected a 2-class concatenated series, got length %d", folded.Len())
	}
	lo0, hi0 := folded.Classes()[0].Ranges()[0].Bounds()
	lo1, hi1 := folded.Classes()[1].Ranges()[0].Bounds()
	if lo0 != '0' || hi0 != '9' || lo1 != '+' || hi1 != '+' {
		t.Fatalf("unexpected folded ranges: [%d-%d][%d-%d]", lo0, hi0, lo1, hi1)
	}
}

func TestMergeSeriesFoldsChoiceOfCompatibleSeries(t *testing.T) {
	p := graph.New()
	digits := singleClassSeriesInstr(p, '0', '9')
	letters := singleClassSeriesInstr(p, 'a', 'z')
	choice := p.Insert(graph.Choice(digits, letters), graph.AnonymousSymbol())
	p.Start = choice

	MergeSeries(p)

	folded := seriesOf(t, p, p.Start)
	if folded.Len() != 1 {
		t.Fatalf("expected a single merged class, got length %d", folded.Len())
	}
	ranges := folded.Classes()[0].Ranges()
	if len(ranges) != 2 {
		t.Fatalf("expected the union to keep both disjoint ranges, got %v", ranges)
	}
}

func TestMergeSeriesLeavesIncompatibleChoiceAlone(t *testing.T) {
	p := graph.New()
	digit := singleClassSeriesInstr(p, '0', '9')
	seq := p.Insert(graph.Seq(digit, digit), graph.AnonymousSymbol())
	choice := p.Insert(graph.Choice(digit, seq), graph.AnonymousSymbol())
	p.Start = choice

	MergeSeries(p)

	root := p.Instructions.MustGet(p.Start)
	if root.Kind != graph.KindChoice {
		t.Fatalf("a choice between a 1-class series and a 2-class series can't fold, should stay a choice, got %v", root.Kind)
	}
}
