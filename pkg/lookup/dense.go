package lookup

// Unsigned is the constraint for keys usable with the dense Lookup.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Dense indexes values by the key's high bits, after discarding the low bits
// already consumed by upstream partitioning across workers: a worker that
// only ever sees keys with a fixed residue modulo the worker count can index
// just the bits it owns. The backing array grows on demand to the largest
// shifted key seen; an empty slot represents absence.
type Dense[K Unsigned, V any] struct {
	slots []*V
	shift uint
}

// NewDense creates a dense Lookup discarding partitionBits low key bits.
func NewDense[K Unsigned, V any](partitionBits uint) *Dense[K, V] {
	return &Dense[K, V]{shift: partitionBits}
}

// DenseFactory returns a Factory producing dense Lookups. The factory's
// partitionBits parameter becomes the shift.
func DenseFactory[K Unsigned, V any]() Factory[K, V] {
	return func(partitionBits uint) Lookup[K, V] { return NewDense[K, V](partitionBits) }
}

func (d *Dense[K, V]) slot(key K) int {
	return int(uint64(key) >> d.shift)
}

func (d *Dense[K, V]) Get(key K) (V, bool) {
	if i := d.slot(key); i < len(d.slots) && d.slots[i] != nil {
		return *d.slots[i], true
	}
	var zero V
	return zero, false
}

func (d *Dense[K, V]) GetRef(key K) *V {
	if i := d.slot(key); i < len(d.slots) {
		return d.slots[i]
	}
	return nil
}

func (d *Dense[K, V]) EntryOrInsert(key K, factory func() V) *V {
	i := d.slot(key)
	for len(d.slots) <= i {
		d.slots = append(d.slots, nil)
	}
	if d.slots[i] == nil {
		v := factory()
		d.slots[i] = &v
	}
	return d.slots[i]
}

func (d *Dense[K, V]) Remove(key K) (V, bool) {
	if i := d.slot(key); i < len(d.slots) && d.slots[i] != nil {
		v := *d.slots[i]
		d.slots[i] = nil
		return v, true
	}
	var zero V
	return zero, false
}
