package transform

import (
	"testing"

	"pegc/graph"
)

// TestSortRelabelsToDepthFirstOrder builds a small graph where Start is
// inserted last (so its id is not 0 in insertion order) and checks that
// Sort renumbers it to depth-first visitation order from Start.
func TestSortRelabelsToDepthFirstOrder(t *testing.T) {
	p := graph.New()
	a := digitSeries(p) // id 0, but not reachable until referenced below
	b := digitSeries(p) // id 1
	seq := p.Insert(graph.Seq(a, b), graph.AnonymousSymbol())
	p.Start = seq

	Trim(p)
	Sort(p)

	if p.Start != 0 {
		t.Fatalf("Start should be relabelled to 0, got %v", p.Start)
	}
	root := p.Instructions.MustGet(0)
	if root.Kind != graph.KindSeq {
		t.Fatalf("instruction 0 should be the seq that was Start, got %v", root.Kind)
	}
	// depth-first: A visited (and assigned) before B.
	if root.A != 1 || root.B != 2 {
		t.Fatalf("expected depth-first remap A=1,B=2, got A=%v,B=%v", root.A, root.B)
	}
}

func TestSortIsIdempotent(t *testing.T) {
	p := graph.New()
	a := digitSeries(p)
	b := digitSeries(p)
	seq := p.Insert(graph.Seq(a, b), graph.AnonymousSymbol())
	p.Start = seq

	Trim(p)
	Sort(p)
	before := snapshot(p)
	Sort(p)
	after := snapshot(p)

	if before != after {
		t.Fatalf("Sort should be a no-op on an already-sorted graph: before=%q after=%q", before, after)
	}
}

// snapshot renders a parser's instruction store to a comparable string for
// equality checks in tests that don't care about the exact encoding.
func snapshot(p *graph.Parser) string {
	var out []byte
	for _, id := range p.Instructions.Keys() {
		in := p.Instructions.MustGet(id)
		out = append(out, byte(id), byte(in.Kind), byte(in.A), byte(in.B), byte(in.Target))
	}
	return string(out)
}
