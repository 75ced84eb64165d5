package codegen

import (
	"testing"

	"pegc/graph"
	"pegc/runtime"
)

func singleClassSeries(p *graph.Parser, lo, hi byte) graph.InstructionID {
	c := graph.NewClass(false)
	c.Insert(lo, hi)
	var s graph.Series
	s = s.Append(c)
	sid := p.Series.Insert(s)
	return p.Insert(graph.SeriesInstr(sid), graph.AnonymousSymbol())
}

func TestEnumerateStatesSeriesIsOneState(t *testing.T) {
	p := graph.New()
	p.Start = singleClassSeries(p, 'a', 'z')

	table, err := EnumerateStates(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Start != 1 {
		t.Fatalf("a single series should start at state 1 (0 is the halt sentinel), got %v", table.Start)
	}
	if len(table.States) != 2 {
		t.Fatalf("expected 2 states (0 unused + 1 series state), got %d", len(table.States))
	}
	if table.States[1].Op != runtime.OpSeries {
		t.Fatalf("expected the series state's op to be OpSeries, got %v", table.States[1].Op)
	}
	if table.States[1].Matcher == nil {
		t.Fatal("expected a compiled matcher on the series state")
	}
}

func TestEnumerateStatesSeqWiresThreeStagesInOrder(t *testing.T) {
	p := graph.New()
	a := singleClassSeries(p, 'a', 'a')
	b := singleClassSeries(p, 'b', 'b')
	p.Start = p.Insert(graph.Seq(a, b), graph.AnonymousSymbol())

	table, err := EnumerateStates(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := table.States[table.Start]
	if start.Op != runtime.OpSeqStart {
		t.Fatalf("expected Start to be OpSeqStart, got %v", start.Op)
	}
	middle := table.States[start.Cont]
	if middle.Op != runtime.OpSeqMiddle {
		t.Fatalf("expected the Cont of SeqStart to be OpSeqMiddle, got %v", middle.Op)
	}
	end := table.States[middle.Cont]
	if end.Op != runtime.OpSeqEnd {
		t.Fatalf("expected the Cont of SeqMiddle to be OpSeqEnd, got %v", end.Op)
	}

	if table.States[start.Target].Op != runtime.OpSeries {
		t.Fatal("expected SeqStart's Target to be the first series' state")
	}
	if table.States[middle.Target].Op != runtime.OpSeries {
		t.Fatal("expected SeqMiddle's Target to be the second series' state")
	}
}

func TestEnumerateStatesFirstChoiceHasOnlyTwoStages(t *testing.T) {
	p := graph.New()
	a := singleClassSeries(p, 'a', 'a')
	b := singleClassSeries(p, 'b', 'b')
	p.Start = p.Insert(graph.FirstChoiceInstr(a, b), graph.AnonymousSymbol())

	table, err := EnumerateStates(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := table.States[table.Start]
	if start.Op != runtime.OpFirstChoiceStart {
		t.Fatalf("expected OpFirstChoiceStart, got %v", start.Op)
	}
	middle := table.States[start.Cont]
	if middle.Op != runtime.OpFirstChoiceMiddle {
		t.Fatalf("expected OpFirstChoiceMiddle as the second and final stage, got %v", middle.Op)
	}
}

func TestEnumerateStatesRejectsUnassignedCacheSlot(t *testing.T) {
	p := graph.New()
	target := singleClassSeries(p, 'a', 'z')
	p.Start = p.Insert(graph.CacheInstr(target, nil), graph.AnonymousSymbol())

	_, err := EnumerateStates(p)
	if err == nil {
		t.Fatal("expected an error for a Cache instruction with no assigned slot")
	}
}

func TestEnumerateStatesCarriesAssignedCacheSlot(t *testing.T) {
	p := graph.New()
	target := singleClassSeries(p, 'a', 'z')
	slot := 3
	p.Start = p.Insert(graph.CacheInstr(target, &slot), graph.AnonymousSymbol())

	table, err := EnumerateStates(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := table.States[table.Start]
	if start.Op != runtime.OpCacheStart || start.Slot != 3 {
		t.Fatalf("expected OpCacheStart with slot 3, got op=%v slot=%d", start.Op, start.Slot)
	}
	end := table.States[start.Cont]
	if end.Op != runtime.OpCacheEnd || end.Slot != 3 {
		t.Fatalf("expected OpCacheEnd with the same slot 3, got op=%v slot=%d", end.Op, end.Slot)
	}
}
