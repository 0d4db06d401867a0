// Package testutils holds the naive, non-incremental reference model the
// operator specs validate against: it remembers every update ever delivered
// and recomputes accumulated collections from scratch on demand.
package testutils

import (
	"cmp"
	"slices"

	"l7mp.io/differential-dataflow/pkg/lattice"
	"l7mp.io/differential-dataflow/pkg/trace"
)

// Update is one weighted (key, value) update at a logical time.
type Update[T lattice.Time[T], K, V cmp.Ordered] struct {
	Time   T
	Key    K
	Value  V
	Weight int
}

// Naive is the full-recomputation reference model.
type Naive[T lattice.Time[T], K, V cmp.Ordered] struct {
	updates []Update[T, K, V]
}

// Add records an update.
func (m *Naive[T, K, V]) Add(time T, key K, value V, weight int) {
	m.updates = append(m.updates, Update[T, K, V]{Time: time, Key: key, Value: value, Weight: weight})
}

// CollectionAt recomputes key's accumulated multiset as of time: the sum of
// all weights per value across every update at times less than or equal to
// time, value-sorted, with zero-weight values dropped.
func (m *Naive[T, K, V]) CollectionAt(key K, time T) []trace.Pair[V] {
	weights := map[V]int{}
	for _, u := range m.updates {
		if u.Key == key && u.Time.Le(time) {
			weights[u.Value] += u.Weight
		}
	}
	out := make([]trace.Pair[V], 0, len(weights))
	for v, w := range weights {
		if w != 0 {
			out = append(out, trace.Pair[V]{Value: v, Weight: w})
		}
	}
	slices.SortFunc(out, func(a, b trace.Pair[V]) int { return cmp.Compare(a.Value, b.Value) })
	return out
}

// Keys returns every key that ever received an update, sorted.
func (m *Naive[T, K, V]) Keys() []K {
	var keys []K
	for _, u := range m.updates {
		if !slices.Contains(keys, u.Key) {
			keys = append(keys, u.Key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Times returns every distinct update time, in recording order.
func (m *Naive[T, K, V]) Times() []T {
	var times []T
	for _, u := range m.updates {
		if !slices.Contains(times, u.Time) {
			times = append(times, u.Time)
		}
	}
	return times
}
