package graph

import "testing"

func mkClass(negated bool, ranges ...[2]byte) Class {
	c := NewClass(negated)
	for _, r := range ranges {
		c.Insert(r[0], r[1])
	}
	return c
}

func TestClassInsertCoalesces(t *testing.T) {
	c := mkClass(false, [2]byte{'a', 'c'}, [2]byte{'b', 'd'})
	if len(c.Ranges()) != 1 || c.Ranges()[0] != (byteRange{'a', 'd'}) {
		t.Fatalf("expected coalesced [a-d], got %v", c.Ranges())
	}
}

func TestClassUnionPositive(t *testing.T) {
	a := mkClass(false, [2]byte{'a', 'c'})
	b := mkClass(false, [2]byte{'b', 'd'})
	u := ClassUnion(a, b)
	if len(u.Ranges()) != 1 || u.Ranges()[0] != (byteRange{'a', 'd'}) {
		t.Fatalf("expected [a-d], got %v", u.Ranges())
	}
}

func TestClassContains(t *testing.T) {
	a := mkClass(false, [2]byte{'a', 'z'})
	b := mkClass(false, [2]byte{'b', 'd'})
	if !ClassContains(a, b) {
		t.Fatal("expected a to contain b")
	}
	if ClassContains(b, a) {
		t.Fatal("expected b not to contain a")
	}
}

func TestClassIsNever(t *testing.T) {
	empty := NewClass(false)
	if !empty.IsNever() {
		t.Fatal("expected empty positive class to be never")
	}
	full := mkClass(true, [2]byte{0, 0xff})
	if !full.IsNever() {
		t.Fatal("expected fully-negated class to be never")
	}
}
