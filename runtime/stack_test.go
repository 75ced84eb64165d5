package runtime

import "testing"

func TestStackPushPopOrder(t *testing.T) {
	s := NewStack[int](0)
	s.Push(1)
	s.Push(2)
	s.Push(3)

	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	if got := s.Pop(); got != 3 {
		t.Fatalf("expected LIFO pop to return 3, got %d", got)
	}
	if got := s.Pop(); got != 2 {
		t.Fatalf("expected LIFO pop to return 2, got %d", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected len 1 after two pops, got %d", s.Len())
	}
}

func TestStackPeekDoesNotRemove(t *testing.T) {
	s := NewStack[string](0)
	s.Push("a")
	s.Push("b")

	if got := s.Peek(); got != "b" {
		t.Fatalf("expected peek to return top element, got %q", got)
	}
	if s.Len() != 2 {
		t.Fatal("Peek must not remove the element")
	}
}

func TestStackPeekAt(t *testing.T) {
	s := NewStack[int](0)
	s.Push(10)
	s.Push(20)
	s.Push(30)

	if got := s.PeekAt(0); got != 30 {
		t.Fatalf("PeekAt(0) should be the top, got %d", got)
	}
	if got := s.PeekAt(1); got != 20 {
		t.Fatalf("PeekAt(1) should be one below the top, got %d", got)
	}
	if got := s.PeekAt(2); got != 10 {
		t.Fatalf("PeekAt(2) should be the bottom, got %d", got)
	}
}

func TestStackEmpty(t *testing.T) {
	s := NewStack[int](0)
	if !s.Empty() {
		t.Fatal("a freshly created stack should be empty")
	}
	s.Push(1)
	if s.Empty() {
		t.Fatal("a stack with a pushed element should not be empty")
	}
	s.Pop()
	if !s.Empty() {
		t.Fatal("a stack should be empty again after popping its only element")
	}
}

// TestStackReusesBackingArrayAfterPop exercises the documented
// grow-or-overwrite discipline: pushing again after popping back down
// overwrites the vacated slots, so the stack holds the new values and not
// stale ones.
func TestStackReusesBackingArrayAfterPop(t *testing.T) {
	s := NewStack[int](4)
	s.Push(1)
	s.Push(2)
	s.Pop()
	s.Pop()
	s.Push(3)
	s.Push(4)

	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	if got := s.Peek(); got != 4 {
		t.Fatalf("expected top to be the most recently pushed value 4, got %d", got)
	}
	if got := s.PeekAt(1); got != 3 {
		t.Fatalf("expected second-from-top to be 3 (old slot overwritten, not stale 1), got %d", got)
	}
}
