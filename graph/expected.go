package graph

import "sort"

// Expected is the set of labels and literal byte-strings that a recovery
// point may report as "expected here" (spec.md §3). Both sets are kept
// sorted so that two structurally-equal Expected values compare equal,
// which dedup's resource-merge phase relies on.
type Expected struct {
	Labels   []LabelID
	Literals []string
}

// NewExpected returns an empty expected set.
func NewExpected() Expected { return Expected{} }

// AddLabel inserts l into the label set, keeping it sorted and unique.
func (e *Expected) AddLabel(l LabelID) {
	i := sort.Search(len(e.Labels), func(i int) bool { return e.Labels[i] >= l })
	if i < len(e.Labels) && e.Labels[i] == l {
		return
	}
	e.Labels = append(e.Labels, 0)
	copy(e.Labels[i+1:], e.Labels[i:])
	e.Labels[i] = l
}

// AddLiteral inserts a literal into the literal set, keeping it sorted and
// unique.
func (e *Expected) AddLiteral(lit string) {
	i := sort.SearchStrings(e.Literals, lit)
	if i < len(e.Literals) && e.Literals[i] == lit {
		return
	}
	e.Literals = append(e.Literals, "")
	copy(e.Literals[i+1:], e.Literals[i:])
	e.Literals[i] = lit
}

// Equal reports whether e and o name the same labels and literals.
func (e Expected) Equal(o Expected) bool {
	if len(e.Labels) != len(o.Labels) || len(e.Literals) != len(o.Literals) {
		return false
	}
	for i := range e.Labels {
		if e.Labels[i] != o.Labels[i] {
			return false
		}
	}
	for i := range e.Literals {
		if e.Literals[i] != o.Literals[i] {
			return false
		}
	}
	return true
}
