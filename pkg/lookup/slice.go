package lookup

// Slice is a linear-scan Lookup over a growable slice of (key, value) pairs.
// Every operation is O(n), but for a handful of keys the scan beats hashing
// and has excellent cache locality. Removal swaps the victim with the last
// element and truncates, so iteration order is not preserved across removals.
type Slice[K comparable, V any] struct {
	pairs []slicePair[K, V]
}

type slicePair[K comparable, V any] struct {
	key K
	val V
}

// NewSlice creates an empty linear-scan Lookup.
func NewSlice[K comparable, V any]() *Slice[K, V] {
	return &Slice[K, V]{}
}

// SliceFactory returns a Factory producing linear-scan Lookups.
func SliceFactory[K comparable, V any]() Factory[K, V] {
	return func(uint) Lookup[K, V] { return NewSlice[K, V]() }
}

func (s *Slice[K, V]) Get(key K) (V, bool) {
	for i := range s.pairs {
		if s.pairs[i].key == key {
			return s.pairs[i].val, true
		}
	}
	var zero V
	return zero, false
}

func (s *Slice[K, V]) GetRef(key K) *V {
	for i := range s.pairs {
		if s.pairs[i].key == key {
			return &s.pairs[i].val
		}
	}
	return nil
}

func (s *Slice[K, V]) EntryOrInsert(key K, factory func() V) *V {
	for i := range s.pairs {
		if s.pairs[i].key == key {
			return &s.pairs[i].val
		}
	}
	s.pairs = append(s.pairs, slicePair[K, V]{key: key, val: factory()})
	return &s.pairs[len(s.pairs)-1].val
}

func (s *Slice[K, V]) Remove(key K) (V, bool) {
	for i := range s.pairs {
		if s.pairs[i].key == key {
			v := s.pairs[i].val
			last := len(s.pairs) - 1
			s.pairs[i] = s.pairs[last]
			s.pairs = s.pairs[:last]
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Len returns the number of stored entries.
func (s *Slice[K, V]) Len() int { return len(s.pairs) }
