package runtime

import (
	"testing"

	"pegc/graph"
)

func leaf(distance uint32) *Match {
	return &Match{Distance: distance, ScanDistance: distance}
}

func TestCursorChildrenResolveAbsoluteOffsets(t *testing.T) {
	root := &Match{Distance: 6}
	root.AppendChild(0, leaf(2))
	root.AppendChild(2, leaf(4))

	c := NewCursor(root)
	kids := c.Children()
	if len(kids) != 2 {
		t.Fatalf("expected 2 children, got %d", len(kids))
	}
	if kids[0].Offset() != 0 || kids[1].Offset() != 2 {
		t.Fatalf("expected absolute offsets 0 and 2 at the root, got %d and %d", kids[0].Offset(), kids[1].Offset())
	}

	grandchild := leaf(1)
	kids[1].Match().AppendChild(1, grandchild)
	grandkids := kids[1].Children()
	if len(grandkids) != 1 || grandkids[0].Offset() != 3 {
		t.Fatalf("expected a grandchild's offset to accumulate from its parent's (2+1=3), got %d", grandkids[0].Offset())
	}
}

func TestCursorLabelledFindsTaggedSubtrees(t *testing.T) {
	const label graph.LabelID = 5

	a := leaf(1)
	a.Grouping = labelGrouping(label)
	b := leaf(1)
	b.Grouping = labelGrouping(label)
	other := leaf(1)

	root := &Match{Distance: 3}
	root.AppendChild(0, a)
	root.AppendChild(1, other)
	root.AppendChild(2, b)

	found := NewCursor(root).Labelled(label)
	if len(found) != 2 {
		t.Fatalf("expected 2 labelled nodes, got %d", len(found))
	}
	if found[0].Match() != a || found[1].Match() != b {
		t.Fatal("expected labelled nodes in pre-order")
	}
}

func TestCursorFirstReturnsOnlyTheFirstMatch(t *testing.T) {
	const label graph.LabelID = 7

	a := leaf(1)
	a.Grouping = labelGrouping(label)
	root := &Match{Distance: 1}
	root.AppendChild(0, a)

	got, ok := NewCursor(root).First(label)
	if !ok || got.Match() != a {
		t.Fatal("expected First to find the single labelled node")
	}

	_, ok2 := NewCursor(root).First(label + 1)
	if ok2 {
		t.Fatal("expected First to report false for a label that isn't present")
	}
}

func TestCursorUnmergedErrorsFindsErrorNodes(t *testing.T) {
	errNode := leaf(1)
	errNode.Grouping = errorGrouping(2)
	clean := leaf(1)

	root := &Match{Distance: 2}
	root.AppendChild(0, errNode)
	root.AppendChild(1, clean)

	found := NewCursor(root).UnmergedErrors()
	if len(found) != 1 || found[0].Match() != errNode {
		t.Fatalf("expected exactly the error-tagged node, got %d results", len(found))
	}
}

func TestCursorVisitSkipStopsDescent(t *testing.T) {
	child := leaf(1)
	root := &Match{Distance: 1}
	root.AppendChild(0, child)

	var entered []*Match
	NewCursor(root).Visit(func(c Cursor, entering bool) VisitResult {
		if entering {
			entered = append(entered, c.Match())
			if c.Match() == root {
				return Skip
			}
		}
		return Continue
	})

	if len(entered) != 1 || entered[0] != root {
		t.Fatalf("Skip on the root should prevent descending into its children, got %d entries", len(entered))
	}
}

func TestCursorVisitExitAbortsWholeWalk(t *testing.T) {
	a := leaf(1)
	b := leaf(1)
	root := &Match{Distance: 2}
	root.AppendChild(0, a)
	root.AppendChild(1, b)

	var entered []*Match
	NewCursor(root).Visit(func(c Cursor, entering bool) VisitResult {
		if entering {
			entered = append(entered, c.Match())
			if c.Match() == a {
				return Exit
			}
		}
		return Continue
	})

	if len(entered) != 2 {
		t.Fatalf("expected the walk to stop right after visiting a (root then a), got %d entries", len(entered))
	}
	if entered[1] != a {
		t.Fatal("expected the walk to abort at a, never reaching b")
	}
}

func TestCursorSearchPredicate(t *testing.T) {
	a := leaf(3)
	b := leaf(5)
	root := &Match{Distance: 8}
	root.AppendChild(0, a)
	root.AppendChild(3, b)

	found := NewCursor(root).Search(func(c Cursor) bool { return c.Match().Distance == 5 })
	if len(found) != 1 || found[0].Match() != b {
		t.Fatalf("expected to find exactly the distance-5 node, got %d results", len(found))
	}
}
