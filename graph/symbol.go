package graph

// DebugSymbol is the small set of rule names attached to each instruction
// for diagnostics (spec.md §3). It is mergeable: when two instructions
// collapse into one (dedup, rewrites), their symbols union.
//
// Grounded on original_source/src/core/mod.rs's DebugSymbol (an Rc<BTreeSet
// <String>> for cheap sharing); Go's GC makes the Rc unnecessary, so this
// is a plain sorted slice.
type DebugSymbol struct {
	names []string
}

// NamedSymbol returns a symbol naming a single rule.
func NamedSymbol(name string) DebugSymbol {
	return DebugSymbol{names: []string{name}}
}

// AnonymousSymbol returns a symbol naming no rule.
func AnonymousSymbol() DebugSymbol {
	return DebugSymbol{}
}

// Names returns the symbol's rule names in sorted order.
func (d DebugSymbol) Names() []string { return d.names }

// Empty reports whether the symbol names no rule.
func (d DebugSymbol) Empty() bool { return len(d.names) == 0 }

// MergeSymbols unions any number of symbols, keeping names sorted and
// deduplicated.
func MergeSymbols(syms ...DebugSymbol) DebugSymbol {
	seen := make(map[string]struct{})
	var names []string
	for _, s := range syms {
		for _, n := range s.names {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sortStrings(names)
	return DebugSymbol{names: names}
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j] < ss[j-1]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}
