package trace

import (
	"cmp"
	"slices"
)

// Pair is a value with its signed multiplicity. A negative weight is a
// logical retraction; a value with net weight zero is absent.
type Pair[V cmp.Ordered] struct {
	Value  V
	Weight int
}

// Triple is one keyed weighted update, the unit of batch ingestion.
type Triple[K, V cmp.Ordered] struct {
	Key    K
	Value  V
	Weight int
}

// Compact is an immutable, columnar batch of per-key weighted differences
// introduced at a single logical time. Keys are held in (key-hash, key)
// order, each owning a run of value-sorted, weight-coalesced pairs. Once a
// Compact is installed into a Trace it is never mutated.
type Compact[K, V cmp.Ordered] struct {
	keys []K
	ends []uint32
	vals []Pair[V]
}

// NewCompact creates an empty Compact with the given capacity hints.
func NewCompact[K, V cmp.Ordered](keyHint, valHint int) *Compact[K, V] {
	return &Compact[K, V]{
		keys: make([]K, 0, keyHint),
		ends: make([]uint32, 0, keyHint),
		vals: make([]Pair[V], 0, valHint),
	}
}

// Keys returns the distinct keys of the batch, in (key-hash, key) order.
func (c *Compact[K, V]) Keys() []K { return c.keys }

// Len returns the total number of (value, weight) pairs across all keys.
func (c *Compact[K, V]) Len() int { return len(c.vals) }

// Run returns the value run of the i-th key.
func (c *Compact[K, V]) Run(i int) []Pair[V] {
	start := uint32(0)
	if i > 0 {
		start = c.ends[i-1]
	}
	return c.vals[start:c.ends[i]]
}

// Session incrementally assembles a Compact one key at a time: push the
// key's pairs in value order, then commit them with Done. A Done with no
// pushed pairs records nothing.
type Session[K, V cmp.Ordered] struct {
	c    *Compact[K, V]
	mark int
}

// Session opens a builder session appending to the Compact.
func (c *Compact[K, V]) Session() Session[K, V] {
	return Session[K, V]{c: c, mark: len(c.vals)}
}

// Push stages one (value, weight) pair for the key of the current Done.
func (s *Session[K, V]) Push(value V, weight int) {
	s.c.vals = append(s.c.vals, Pair[V]{Value: value, Weight: weight})
}

// Done commits the staged pairs under key.
func (s *Session[K, V]) Done(key K) {
	if len(s.c.vals) == s.mark {
		return
	}
	s.c.keys = append(s.c.keys, key)
	s.c.ends = append(s.c.ends, uint32(len(s.c.vals)))
	s.mark = len(s.c.vals)
}

// FromRadix builds a Compact from the blocks of a radix-sorted run, as
// produced by the radix sorter keyed on hash(key). Returns nil if nothing
// survives coalescing.
func FromRadix[K, V cmp.Ordered](blocks [][]Triple[K, V], hash func(K) uint64) *Compact[K, V] {
	total := 0
	for _, blk := range blocks {
		total += len(blk)
	}
	triples := make([]Triple[K, V], 0, total)
	for _, blk := range blocks {
		triples = append(triples, blk...)
	}
	return fromHashSorted(triples, hash)
}

// FromSorted builds a Compact from a single vector of triples already sorted
// by key hash, the lower-overhead path for single-delivery batches. The
// vector is reordered in place. Returns nil if nothing survives coalescing.
func FromSorted[K, V cmp.Ordered](triples []Triple[K, V], hash func(K) uint64) *Compact[K, V] {
	return fromHashSorted(triples, hash)
}

// fromHashSorted finishes compaction of a hash-sorted vector: each run of
// equal-hash triples is sorted by (key, value), then equal (key, value)
// pairs are summed and zero-weight results dropped.
func fromHashSorted[K, V cmp.Ordered](triples []Triple[K, V], hash func(K) uint64) *Compact[K, V] {
	if len(triples) == 0 {
		return nil
	}

	start := 0
	for i := 1; i <= len(triples); i++ {
		if i < len(triples) && hash(triples[i].Key) == hash(triples[start].Key) {
			continue
		}
		slices.SortFunc(triples[start:i], func(a, b Triple[K, V]) int {
			if c := cmp.Compare(a.Key, b.Key); c != 0 {
				return c
			}
			return cmp.Compare(a.Value, b.Value)
		})
		start = i
	}

	c := NewCompact[K, V](0, len(triples))
	sess := c.Session()
	for i := 0; i < len(triples); {
		key := triples[i].Key
		for i < len(triples) && triples[i].Key == key {
			value := triples[i].Value
			weight := 0
			for i < len(triples) && triples[i].Key == key && triples[i].Value == value {
				weight += triples[i].Weight
				i++
			}
			if weight != 0 {
				sess.Push(value, weight)
			}
		}
		sess.Done(key)
	}

	if c.Len() == 0 {
		return nil
	}
	return c
}
