package runtime

import "pegc/graph"

// GroupingKind discriminates what a Match node's boundary represents.
type GroupingKind byte

const (
	GroupNone GroupingKind = iota
	GroupLabel
	GroupError
	GroupRoot
)

// Grouping is a Match node's boundary tag: nothing, a labelled capture, a
// soft error, or the parse's root.
type Grouping struct {
	Kind     GroupingKind
	Label    graph.LabelID
	Expected graph.ExpectedID
}

func noneGrouping() Grouping { return Grouping{Kind: GroupNone} }

func labelGrouping(l graph.LabelID) Grouping { return Grouping{Kind: GroupLabel, Label: l} }

func errorGrouping(e graph.ExpectedID) Grouping { return Grouping{Kind: GroupError, Expected: e} }

// inlineChildren is the boxing threshold from spec.md §9: a conforming
// implementation may pick any small N without changing semantics.
const inlineChildren = 4

// Child is one entry in a Match's child list: a byte offset (relative to
// the parent's start) paired with the shared subtree.
type Child struct {
	Offset uint32
	Match  *Match
}

// Match is a node of the parse's match tree (spec.md §4.12/§4.13): built
// bottom-up by combine, shared by plain pointer once built (a Go GC makes
// the explicit non-atomic refcount spec.md's design notes mention for
// non-GC hosts unnecessary — any number of parents may hold the same *Match
// and it is never mutated after construction).
type Match struct {
	Distance      uint32
	ScanDistance  uint32
	ErrorDistance *uint32
	Work          uint32
	Grouping      Grouping

	inline    [inlineChildren]Child
	numInline int
	overflow  []Child
}

// AppendChild records a child match at the given offset, boxing into the
// overflow slice once the inline array fills.
func (m *Match) AppendChild(offset uint32, child *Match) {
	c := Child{Offset: offset, Match: child}
	if m.numInline < inlineChildren {
		m.inline[m.numInline] = c
		m.numInline++
		return
	}
	m.overflow = append(m.overflow, c)
}

// Children returns every child in order.
func (m *Match) Children() []Child {
	if len(m.overflow) == 0 {
		return m.inline[:m.numInline]
	}
	out := make([]Child, 0, m.numInline+len(m.overflow))
	out = append(out, m.inline[:m.numInline]...)
	out = append(out, m.overflow...)
	return out
}

// Result is a primitive's outcome: either a Match (success) or a bare
// scan_distance/work pair (failure) — the failure path carries no tree
// since nothing matched to attach one to.
type Result struct {
	M            *Match
	ScanDistance uint32
	Work         uint32
}

// Matched reports whether r represents a successful match.
func (r Result) Matched() bool { return r.M != nil }

// Success wraps m as a successful Result.
func Success(m *Match) Result { return Result{M: m} }

// Failure builds an unmatched Result with the given scan distance and work.
func Failure(scanDistance, work uint32) Result {
	return Result{ScanDistance: scanDistance, Work: work}
}

// TotalScanDistance returns the result's scan distance regardless of
// whether it matched.
func (r Result) TotalScanDistance() uint32 {
	if r.M != nil {
		return r.M.ScanDistance
	}
	return r.ScanDistance
}

// TotalWork returns the result's accumulated work regardless of whether it
// matched.
func (r Result) TotalWork() uint32 {
	if r.M != nil {
		return r.M.Work
	}
	return r.Work
}

// WithWork returns a copy of r with its work counter increased by delta.
func (r Result) WithWork(delta uint32) Result {
	if r.M != nil {
		m := *r.M
		m.Work += delta
		return Result{M: &m}
	}
	r.Work += delta
	return r
}

// errorFree reports whether a matched result carries no soft-error marker
// — the fast path Choice commits to without trying its second branch.
func (r Result) errorFree() bool {
	return r.M != nil && r.M.ErrorDistance == nil
}

// Distance returns the bytes consumed by r, or 0 if r is a failure (a
// failed primitive never leaves position net-advanced, per the
// interpreter's rewind discipline).
func (r Result) Distance() uint32 {
	if r.M != nil {
		return r.M.Distance
	}
	return 0
}

// WithMaxScanDistance returns a copy of r with its scan distance raised to
// at least other, used when choice_end folds in the discarded branch's
// scan distance without adopting its match.
func (r Result) WithMaxScanDistance(other uint32) Result {
	cur := r.TotalScanDistance()
	m := maxU32(cur, other)
	if r.M != nil {
		out := *r.M
		out.ScanDistance = m
		return Success(&out)
	}
	return Failure(m, r.Work)
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// combineMatches implements Seq's success combine (spec.md §4.12's "on
// both match, concatenate"): distances sum, scan distance is the greater
// of first's own or first's span plus second's, error distance is
// whichever side's is earlier (first's, else second's shifted by first's
// distance), and children splice together when both sides are plain
// (Grouping None) and the total is at most inlineChildren — otherwise the two matches box as two children of a fresh parent.
func combineMatches(first, second *Match) *Match {
	errDist := first.ErrorDistance
	if errDist == nil && second.ErrorDistance != nil {
		d := first.Distance + *second.ErrorDistance
		errDist = &d
	}

	out := &Match{
		Distance:      first.Distance + second.Distance,
		ScanDistance:  maxU32(first.ScanDistance, first.Distance+second.ScanDistance),
		ErrorDistance: errDist,
		Work:          first.Work + second.Work,
		Grouping:      noneGrouping(),
	}

	firstChildren := first.Children()
	secondChildren := second.Children()
	flatten := first.Grouping.Kind == GroupNone && second.Grouping.Kind == GroupNone &&
		len(firstChildren)+len(secondChildren) <= inlineChildren

	if flatten {
		for _, c := range firstChildren {
			out.AppendChild(c.Offset, c.Match)
		}
		for _, c := range secondChildren {
			out.AppendChild(c.Offset+first.Distance, c.Match)
		}
	} else {
		out.AppendChild(0, first)
		out.AppendChild(first.Distance, second)
	}
	return out
}
