package runtime

import "testing"

func TestCompileClassesMatchesLiteral(t *testing.T) {
	matcher := CompileClasses([]ClassSpec{
		{Ranges: [][2]byte{{'a', 'a'}}},
		{Ranges: [][2]byte{{'b', 'b'}}},
	})
	input := NewByteSliceInput([]byte("ab"))

	ok, length := matcher(input, 0)
	if !ok || length != 2 {
		t.Fatalf("expected a match of length 2, got ok=%v length=%d", ok, length)
	}
}

func TestCompileClassesReportsMismatchOffset(t *testing.T) {
	matcher := CompileClasses([]ClassSpec{
		{Ranges: [][2]byte{{'a', 'a'}}},
		{Ranges: [][2]byte{{'b', 'b'}}},
	})
	input := NewByteSliceInput([]byte("ax"))

	ok, length := matcher(input, 0)
	if ok {
		t.Fatal("expected a mismatch")
	}
	if length != 2 {
		t.Fatalf("expected length to report 2 bytes inspected before the mismatch (index 1, so i+1=2), got %d", length)
	}
}

func TestCompileClassesReportsShortInputOffset(t *testing.T) {
	matcher := CompileClasses([]ClassSpec{
		{Ranges: [][2]byte{{'a', 'a'}}},
		{Ranges: [][2]byte{{'b', 'b'}}},
	})
	input := NewByteSliceInput([]byte("a"))

	ok, length := matcher(input, 0)
	if ok {
		t.Fatal("expected a mismatch on running out of input")
	}
	if length != 1 {
		t.Fatalf("expected length to report how many bytes existed before end of input (1), got %d", length)
	}
}

func TestCompileClassesNegatedRange(t *testing.T) {
	matcher := CompileClasses([]ClassSpec{
		{Negated: true, Ranges: [][2]byte{{'0', '9'}}},
	})
	input := NewByteSliceInput([]byte("x"))

	ok, length := matcher(input, 0)
	if !ok || length != 1 {
		t.Fatalf("negated class should match any byte outside its ranges, got ok=%v length=%d", ok, length)
	}

	input2 := NewByteSliceInput([]byte("5"))
	ok2, _ := matcher(input2, 0)
	if ok2 {
		t.Fatal("negated class should not match a byte inside its ranges")
	}
}

func TestCompileClassesEmptySeriesMatchesEmptyString(t *testing.T) {
	matcher := CompileClasses(nil)
	input := NewByteSliceInput([]byte("anything"))

	ok, length := matcher(input, 3)
	if !ok || length != 0 {
		t.Fatalf("an empty series should always match consuming 0 bytes, got ok=%v length=%d", ok, length)
	}
}
