package lookup

// Map is the general-purpose hash-indexed Lookup: O(1) amortized per
// operation, suitable for arbitrary well-distributed keys.
type Map[K comparable, V any] struct {
	entries map[K]*V
}

// NewMap creates an empty hash-indexed Lookup.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{entries: make(map[K]*V)}
}

// MapFactory returns a Factory producing hash-indexed Lookups.
func MapFactory[K comparable, V any]() Factory[K, V] {
	return func(uint) Lookup[K, V] { return NewMap[K, V]() }
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	if p, ok := m.entries[key]; ok {
		return *p, true
	}
	var zero V
	return zero, false
}

func (m *Map[K, V]) GetRef(key K) *V {
	return m.entries[key]
}

func (m *Map[K, V]) EntryOrInsert(key K, factory func() V) *V {
	if p, ok := m.entries[key]; ok {
		return p
	}
	v := factory()
	m.entries[key] = &v
	return &v
}

func (m *Map[K, V]) Remove(key K) (V, bool) {
	if p, ok := m.entries[key]; ok {
		delete(m.entries, key)
		return *p, true
	}
	var zero V
	return zero, false
}
