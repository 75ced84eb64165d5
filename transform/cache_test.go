package transform

import (
	"testing"

	"pegc/graph"
)

func TestInsertCachePointsWrapsSharedExpensiveInstruction(t *testing.T) {
	p := graph.New()

	// Build a target with two predecessors (Choice references it twice)
	// and inflate its inherent work above MaxUncachedWork with nested
	// Label wrapping (LabelWork=50 each), so it's worth caching.
	target := singleClassSeriesInstr(p, '0', '9')
	wrapped := target
	label := p.Labels.Insert("n")
	for i := 0; i < 6; i++ {
		wrapped = p.Insert(graph.LabelInstr(wrapped, label), graph.AnonymousSymbol())
	}
	choice := p.Insert(graph.Choice(wrapped, wrapped), graph.AnonymousSymbol())
	p.Start = choice

	InsertCachePoints(p)

	root := p.Instructions.MustGet(p.Start)
	if root.A != root.B {
		t.Fatalf("both branches should still reference the same (now cache-wrapped) instruction, got %v and %v", root.A, root.B)
	}
	wrappedInstr := p.Instructions.MustGet(root.A)
	if wrappedInstr.Kind != graph.KindCache {
		t.Fatalf("an expensive instruction with 2+ predecessors should be wrapped in Cache, got %v", wrappedInstr.Kind)
	}
	if wrappedInstr.Target != wrapped {
		t.Fatalf("the cache node should wrap the original shared instruction")
	}
}

func TestInsertCachePointsSkipsCheapSharedInstruction(t *testing.T) {
	p := graph.New()
	target := singleClassSeriesInstr(p, '0', '9') // SeriesWork=1, far below MaxUncachedWork
	choice := p.Insert(graph.Choice(target, target), graph.AnonymousSymbol())
	p.Start = choice

	InsertCachePoints(p)

	root := p.Instructions.MustGet(p.Start)
	branch := p.Instructions.MustGet(root.A)
	if branch.Kind == graph.KindCache {
		t.Fatal("a cheap instruction should not get a cache wrapper even with 2+ predecessors")
	}
}

func TestInsertCachePointsSkipsSinglePredecessor(t *testing.T) {
	p := graph.New()
	target := singleClassSeriesInstr(p, '0', '9')
	label := p.Labels.Insert("n")
	wrapped := target
	for i := 0; i < 10; i++ {
		wrapped = p.Insert(graph.LabelInstr(wrapped, label), graph.AnonymousSymbol())
	}
	p.Start = wrapped

	InsertCachePoints(p)

	if p.Instructions.MustGet(target).Kind == graph.KindCache {
		t.Fatal("target itself should never be rewritten in place")
	}
	// nothing downstream has 2+ predecessors here, so nothing should be wrapped.
	for _, id := range graph.Walk(p) {
		if p.Instructions.MustGet(id).Kind == graph.KindCache {
			t.Fatalf("no instruction in a single linear chain should be cache-wrapped, found one at %v", id)
		}
	}
}

func TestInsertCachePointsTreatsCyclesAsAlwaysWorthCaching(t *testing.T) {
	p := graph.New()
	// Build a 2-cycle: a -> b -> a, entered from two places.
	aID := p.Instructions.Reserve()
	bID := p.Instructions.Reserve()
	p.Instructions.Set(aID, graph.NotAhead(bID))
	p.Instructions.Set(bID, graph.NotAhead(aID))
	p.SetSymbol(aID, graph.AnonymousSymbol())
	p.SetSymbol(bID, graph.AnonymousSymbol())

	choice := p.Insert(graph.Choice(aID, aID), graph.AnonymousSymbol())
	p.Start = choice

	InsertCachePoints(p)

	root := p.Instructions.MustGet(p.Start)
	wrapped := p.Instructions.MustGet(root.A)
	if wrapped.Kind != graph.KindCache {
		t.Fatalf("an instruction that is part of a cycle and has 2+ predecessors must be cached (unbounded estimate), got %v", wrapped.Kind)
	}
}

func TestAssignCacheIDsAssignsDenseUniqueSlots(t *testing.T) {
	p := graph.New()
	target1 := singleClassSeriesInstr(p, '0', '9')
	slot1 := 0
	c1 := p.Insert(graph.CacheInstr(target1, &slot1), graph.AnonymousSymbol())
	target2 := singleClassSeriesInstr(p, 'a', 'z')
	c2 := p.Insert(graph.CacheInstr(target2, nil), graph.AnonymousSymbol())
	p.Start = p.Insert(graph.Seq(c1, c2), graph.AnonymousSymbol())

	count := AssignCacheIDs(p)

	if count != 2 {
		t.Fatalf("expected 2 cache instructions assigned, got %d", count)
	}
	slotA := p.Instructions.MustGet(c1).CacheSlot
	slotB := p.Instructions.MustGet(c2).CacheSlot
	if slotA == nil || slotB == nil {
		t.Fatal("every cache instruction should get a non-nil slot")
	}
	if *slotA == *slotB {
		t.Fatal("cache slots must be unique")
	}
	if *slotA < 0 || *slotA >= count || *slotB < 0 || *slotB >= count {
		t.Fatal("cache slots should be dense in [0, count)")
	}
}
