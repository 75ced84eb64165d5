package codegen

import (
	"strings"
	"testing"

	"pegc/graph"
)

func TestClassSpecLiteralRendersRangesAndNegation(t *testing.T) {
	specs := toClassSpecs(func() graph.Series {
		c := graph.NewClass(true)
		c.Insert('0', '9')
		var s graph.Series
		return s.Append(c)
	}())

	got := classSpecLiteral(specs)
	want := "[]runtime.ClassSpec{{Negated: true, Ranges: [][2]byte{{48, 57}}}}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClassSpecLiteralRendersEmptySeriesAsEmptyLiteral(t *testing.T) {
	got := classSpecLiteral(toClassSpecs(graph.EmptySeries()))
	if got != "[]runtime.ClassSpec{}" {
		t.Fatalf("expected an empty literal for an empty series, got %q", got)
	}
}

func TestEnumerateForEmitMatchesEnumerateStatesNumbering(t *testing.T) {
	p := graph.New()
	a := singleClassSeries(p, 'a', 'a')
	b := singleClassSeries(p, 'b', 'b')
	p.Start = p.Insert(graph.Seq(a, b), graph.AnonymousSymbol())

	table, err := EnumerateStates(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states, start, err := enumerateForEmit(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if uint32(start) != uint32(table.Start) {
		t.Fatalf("expected emit start %d to match runtime start %d", start, table.Start)
	}
	if len(states) != len(table.States) {
		t.Fatalf("expected the same number of states, got %d vs %d", len(states), len(table.States))
	}
}

func TestEnumerateForEmitRejectsUnassignedCacheSlot(t *testing.T) {
	p := graph.New()
	target := singleClassSeries(p, 'a', 'z')
	p.Start = p.Insert(graph.CacheInstr(target, nil), graph.AnonymousSymbol())

	_, _, err := enumerateForEmit(p)
	if err == nil {
		t.Fatal("expected an error for a Cache instruction with no assigned slot")
	}
}

func TestEmitRejectsEmptyPackageName(t *testing.T) {
	p := graph.New()
	p.Start = singleClassSeries(p, 'a', 'z')

	_, err := Emit(p, EmitOptions{Package: "", ImportPath: "example.com/m/parser"})
	if err == nil {
		t.Fatal("expected an error for an empty package name")
	}
}

func TestEmitRejectsInvalidImportPath(t *testing.T) {
	p := graph.New()
	p.Start = singleClassSeries(p, 'a', 'z')

	_, err := Emit(p, EmitOptions{Package: "parser", ImportPath: "not a valid path!!"})
	if err == nil {
		t.Fatal("expected an error for an invalid import path")
	}
}

func TestEmitStampsDistinctBuildIDsOnEachCall(t *testing.T) {
	p := graph.New()
	p.Start = singleClassSeries(p, 'a', 'z')

	first, err := Emit(p, EmitOptions{Package: "lexer", ImportPath: "example.com/m/lexer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Emit(p, EmitOptions{Package: "lexer", ImportPath: "example.com/m/lexer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstLine, ok := buildIDLine(string(first))
	if !ok {
		t.Fatalf("expected a build id header comment, got:\n%s", first)
	}
	secondLine, ok := buildIDLine(string(second))
	if !ok {
		t.Fatalf("expected a build id header comment, got:\n%s", second)
	}
	if firstLine == secondLine {
		t.Fatal("expected two emissions of the same grammar to carry distinct build ids")
	}
}

func buildIDLine(src string) (string, bool) {
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "// build: ") {
			return line, true
		}
	}
	return "", false
}

func TestEmitProducesSourceNamingTheRequestedPackage(t *testing.T) {
	p := graph.New()
	p.Start = singleClassSeries(p, 'a', 'z')

	out, err := Emit(p, EmitOptions{Package: "lexer", ImportPath: "example.com/m/lexer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := string(out)
	if !strings.Contains(src, "package lexer") {
		t.Fatalf("expected generated source to declare package lexer, got:\n%s", src)
	}
	if !strings.Contains(src, "func Table() *runtime.Table") {
		t.Fatalf("expected generated source to define Table(), got:\n%s", src)
	}
	if !strings.Contains(src, "runtime.OpSeries") {
		t.Fatalf("expected the single series instruction to emit an OpSeries state, got:\n%s", src)
	}
}
