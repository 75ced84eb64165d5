package runtime

// ClassSpec is a byte-range class expressed as plain data: the form both
// the in-memory enumerator (codegen.EnumerateStates) and emitted Go source
// (codegen.Emit) use to build a SeriesMatcher, so there is exactly one
// matching implementation shared by both paths.
type ClassSpec struct {
	Negated bool
	Ranges  [][2]byte
}

func (c ClassSpec) contains(b byte) bool {
	for _, r := range c.Ranges {
		if b >= r[0] && b <= r[1] {
			return !c.Negated
		}
	}
	return c.Negated
}

// CompileClasses builds a SeriesMatcher for a fixed sequence of classes,
// matching spec.md §4.12's series primitive: on a hit, distance/scan
// distance equal the series length; on a miss, length is however many
// bytes were inspected before the mismatch or end of input.
func CompileClasses(classes []ClassSpec) SeriesMatcher {
	n := len(classes)
	return func(input Input, pos int) (bool, int) {
		for i := 0; i < n; i++ {
			p := pos + i
			if p >= input.Len() {
				return false, i
			}
			if !classes[i].contains(input.At(p)) {
				return false, i + 1
			}
		}
		return true, n
	}
}
