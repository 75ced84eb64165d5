package graph

// Series is an ordered sequence of Classes: a fixed-length byte pattern.
// An empty series matches the empty string. A series containing any
// never-class is normalized to the canonical never-series (a single-class
// series whose class is never), per spec.md's invariant.
//
// Grounded on original_source/src/core/series.rs's Series (append/merge),
// generalized with Series.Concatenate per spec.md §4.2.
type Series struct {
	classes []Class
}

// EmptySeries returns the series that matches the empty string.
func EmptySeries() Series { return Series{} }

// neverClass is the canonical "matches nothing" class: an empty positive
// class.
func neverClass() Class { return NewClass(false) }

// NeverSeries returns the canonical series that can never match.
func NeverSeries() Series { return Series{classes: []Class{neverClass()}} }

// IsEmpty reports whether the series is the empty (zero-length) series.
func (s Series) IsEmpty() bool { return len(s.classes) == 0 }

// IsNever reports whether s is the canonical never-series.
func (s Series) IsNever() bool {
	for _, c := range s.classes {
		if c.IsNever() {
			return true
		}
	}
	return false
}

// Classes returns s's classes in order.
func (s Series) Classes() []Class { return s.classes }

// Len returns the number of classes (the fixed length of the pattern).
func (s Series) Len() int { return len(s.classes) }

// Append adds a class to the end of the series, collapsing to the
// canonical never-series if the result becomes impossible.
func (s Series) Append(c Class) Series {
	out := Series{classes: append(append([]Class{}, s.classes...), c)}
	if out.IsNever() {
		return NeverSeries()
	}
	return out
}

// Concatenate appends y's classes after x's, collapsing to never if either
// side already is, or if the result contains a never class.
func Concatenate(x, y Series) Series {
	if x.IsNever() || y.IsNever() {
		return NeverSeries()
	}
	out := Series{classes: append(append([]Class{}, x.classes...), y.classes...)}
	if out.IsNever() {
		return NeverSeries()
	}
	return out
}

// Merge implements Series::merge from spec.md §4.2: it returns a series iff
// x and y have the same length n, and either (a) their first n-1 classes
// are pairwise equal and the last classes union, or (b) one series'
// classes are all supersets of the other's (componentwise). The
// never-series acts as the union identity.
func Merge(x, y Series) (Series, bool) {
	if x.IsNever() {
		return y, true
	}
	if y.IsNever() {
		return x, true
	}
	if len(x.classes) != len(y.classes) {
		return Series{}, false
	}
	n := len(x.classes)
	if n == 0 {
		return EmptySeries(), true
	}

	prefixEqual := true
	for i := 0; i < n-1; i++ {
		if !classEqual(x.classes[i], y.classes[i]) {
			prefixEqual = false
			break
		}
	}
	if prefixEqual {
		merged := make([]Class, n)
		copy(merged, x.classes[:n-1])
		merged[n-1] = ClassUnion(x.classes[n-1], y.classes[n-1])
		out := Series{classes: merged}
		if out.IsNever() {
			return NeverSeries(), true
		}
		return out, true
	}

	if seriesSuperset(x, y) {
		return x, true
	}
	if seriesSuperset(y, x) {
		return y, true
	}
	return Series{}, false
}

// seriesSuperset reports whether every class in a is a (componentwise)
// superset of the corresponding class in b.
func seriesSuperset(a, b Series) bool {
	for i := range a.classes {
		if !ClassContains(a.classes[i], b.classes[i]) {
			return false
		}
	}
	return true
}

// Literal attempts to derive a fixed byte-string literal from the series,
// per spec.md §4.6's expected-inference rule: every class must be a
// singleton byte. Returns ok=false if any class is not a single byte.
func (s Series) Literal() (string, bool) {
	buf := make([]byte, 0, len(s.classes))
	for _, c := range s.classes {
		b, ok := c.singleton()
		if !ok {
			return "", false
		}
		buf = append(buf, b)
	}
	return string(buf), true
}

// singleton reports the single byte a class matches, if it matches exactly
// one byte.
func (c Class) singleton() (byte, bool) {
	if c.negated {
		return 0, false
	}
	if len(c.ranges) != 1 || c.ranges[0].lo != c.ranges[0].hi {
		return 0, false
	}
	return c.ranges[0].lo, true
}
