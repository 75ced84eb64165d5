package graph

// Store is an insertion-ordered, stable-id map from a dense key K to a
// value V. It supports reservation-before-fill (a key can be minted before
// its value is known, so forward references resolve during loading) and
// removal, while never reusing an id: Store.next never decreases.
//
// Grounded on original_source's Store<K, V> (a BTreeMap<usize, V>); here a
// plain map plus a tracked id ceiling plays the same role, since order is
// recovered on demand via Keys rather than required of the underlying map.
type Store[K Key, V any] struct {
	next   uint32
	values map[uint32]V
}

// NewStore returns an empty store.
func NewStore[K Key, V any]() *Store[K, V] {
	return &Store[K, V]{values: make(map[uint32]V)}
}

// Reserve mints a fresh key with no associated value yet.
func (s *Store[K, V]) Reserve() K {
	id := s.next
	s.next++
	return K(id)
}

// Insert reserves a key and sets its value in one step.
func (s *Store[K, V]) Insert(value V) K {
	id := s.Reserve()
	s.Set(id, value)
	return id
}

// Set stores value at id, advancing the id ceiling if necessary.
func (s *Store[K, V]) Set(id K, value V) {
	idx := uint32(id)
	if idx >= s.next {
		s.next = idx + 1
	}
	s.values[idx] = value
}

// Get returns the value at id and whether it was present.
func (s *Store[K, V]) Get(id K) (V, bool) {
	v, ok := s.values[uint32(id)]
	return v, ok
}

// MustGet returns the value at id, panicking if absent. Used where the
// caller has already established id's validity (e.g. within a walk).
func (s *Store[K, V]) MustGet(id K) V {
	v, ok := s.values[uint32(id)]
	if !ok {
		panic("graph: store access with unknown id")
	}
	return v
}

// Remove deletes id's value, if any.
func (s *Store[K, V]) Remove(id K) {
	delete(s.values, uint32(id))
}

// Has reports whether id currently has a value.
func (s *Store[K, V]) Has(id K) bool {
	_, ok := s.values[uint32(id)]
	return ok
}

// Len returns the number of currently-set entries (not the id ceiling:
// holes left by Remove do not count).
func (s *Store[K, V]) Len() int {
	return len(s.values)
}

// Keys returns the set ids in ascending order.
func (s *Store[K, V]) Keys() []K {
	out := make([]K, 0, len(s.values))
	for k := range s.values {
		out = append(out, K(k))
	}
	sortUint32Keys(out)
	return out
}

// Each calls fn for every (id, value) pair in ascending id order.
func (s *Store[K, V]) Each(fn func(K, V)) {
	for _, k := range s.Keys() {
		fn(k, s.values[uint32(k)])
	}
}

// Clone returns a shallow copy of the store.
func (s *Store[K, V]) Clone() *Store[K, V] {
	out := &Store[K, V]{next: s.next, values: make(map[uint32]V, len(s.values))}
	for k, v := range s.values {
		out.values[k] = v
	}
	return out
}

func sortUint32Keys[K Key](ks []K) {
	// insertion sort is fine: stores are small relative to grammar size,
	// and this only runs for iteration/dump, never in the hot path.
	for i := 1; i < len(ks); i++ {
		for j := i; j > 0 && ks[j] < ks[j-1]; j-- {
			ks[j], ks[j-1] = ks[j-1], ks[j]
		}
	}
}
