package runtime

import (
	"github.com/davecgh/go-spew/spew"

	"pegc/graph"
)

// VisitResult is a Visitor callback's instruction to the walk.
type VisitResult int

const (
	Continue VisitResult = iota
	Skip
	Exit
)

// Visitor is called once on entering a node (entering=true) and, unless it
// returned Exit on entry, once again on leaving it (entering=false).
type Visitor func(c Cursor, entering bool) VisitResult

// Cursor navigates a Match tree: spec.md §4.13's post-parse API. offset is
// the cursor's absolute byte position, accumulated from the root.
type Cursor struct {
	m      *Match
	offset uint32
}

// NewCursor wraps root as the tree's root cursor; its Grouping is
// conventionally treated as Root by callers regardless of the literal
// Match's own grouping field.
func NewCursor(root *Match) Cursor { return Cursor{m: root} }

// Match returns the underlying node.
func (c Cursor) Match() *Match { return c.m }

// Offset returns the cursor's absolute byte position.
func (c Cursor) Offset() uint32 { return c.offset }

// Grouping returns the node's boundary tag.
func (c Cursor) Grouping() Grouping { return c.m.Grouping }

// Children returns cursors over every direct child, offsets resolved to
// absolute positions.
func (c Cursor) Children() []Cursor {
	kids := c.m.Children()
	out := make([]Cursor, len(kids))
	for i, ch := range kids {
		out[i] = Cursor{m: ch.Match, offset: c.offset + ch.Offset}
	}
	return out
}

// Search returns every cursor in the subtree (including c itself) for
// which pred holds, in pre-order.
func (c Cursor) Search(pred func(Cursor) bool) []Cursor {
	var out []Cursor
	c.Visit(func(cur Cursor, entering bool) VisitResult {
		if entering && pred(cur) {
			out = append(out, cur)
		}
		return Continue
	})
	return out
}

// Labelled returns every cursor in the subtree grouped under label.
func (c Cursor) Labelled(label graph.LabelID) []Cursor {
	return c.Search(func(cur Cursor) bool {
		g := cur.Grouping()
		return g.Kind == GroupLabel && g.Label == label
	})
}

// First returns the first (pre-order) cursor grouped under label.
func (c Cursor) First(label graph.LabelID) (Cursor, bool) {
	found := c.Labelled(label)
	if len(found) == 0 {
		return Cursor{}, false
	}
	return found[0], true
}

// UnmergedErrors returns every soft-error node in the subtree, in
// pre-order.
func (c Cursor) UnmergedErrors() []Cursor {
	return c.Search(func(cur Cursor) bool { return cur.Grouping().Kind == GroupError })
}

// Visit walks the subtree pre/post-order. The callback may return Exit to
// abort the whole walk, Skip (on entry) to not descend into this node's
// children, or Continue to proceed normally.
func (c Cursor) Visit(v Visitor) VisitResult {
	switch v(c, true) {
	case Exit:
		return Exit
	case Skip:
		// fall through to the exit call without descending
	default:
		for _, child := range c.Children() {
			if child.Visit(v) == Exit {
				return Exit
			}
		}
	}
	return v(c, false)
}

// Dump renders a Match tree for debugging, replacing the hand-rolled
// snapshot string-building a direct port of the teacher's VM would need.
func Dump(m *Match) string {
	return spew.Sdump(m)
}
