package trace

import "cmp"

// WeightedIter is a stream of (value, weight) pairs in ascending value
// order.
type WeightedIter[V cmp.Ordered] interface {
	Next() (V, int, bool)
}

// SliceIter adapts a value-sorted slice of pairs to a WeightedIter.
// Duplicate values are permitted; Coalesce sums them.
type SliceIter[V cmp.Ordered] struct {
	pairs []Pair[V]
}

// NewSliceIter creates an iterator over a value-sorted slice.
func NewSliceIter[V cmp.Ordered](pairs []Pair[V]) *SliceIter[V] {
	return &SliceIter[V]{pairs: pairs}
}

func (it *SliceIter[V]) Next() (V, int, bool) {
	if len(it.pairs) == 0 {
		var zero V
		return zero, 0, false
	}
	p := it.pairs[0]
	it.pairs = it.pairs[1:]
	return p.Value, p.Weight, true
}

type negated[V cmp.Ordered] struct {
	inner WeightedIter[V]
}

// Negate flips the sign of every weight of an iterator, turning a
// previously emitted collection into its full retraction.
func Negate[V cmp.Ordered](it WeightedIter[V]) WeightedIter[V] {
	return &negated[V]{inner: it}
}

func (it *negated[V]) Next() (V, int, bool) {
	v, w, ok := it.inner.Next()
	return v, -w, ok
}

// Coalesce streams the two-way merge of a and b, both sorted by value,
// summing the weights of equal values within and across inputs and
// suppressing values whose sum is zero. Neither side is ever materialized,
// so the cost scales with the size of the change, not the size of history.
func Coalesce[V cmp.Ordered](a, b WeightedIter[V], emit func(V, int)) {
	av, aw, aok := a.Next()
	bv, bw, bok := b.Next()
	for aok || bok {
		var v V
		if aok && (!bok || av <= bv) {
			v = av
		} else {
			v = bv
		}
		weight := 0
		for aok && av == v {
			weight += aw
			av, aw, aok = a.Next()
		}
		for bok && bv == v {
			weight += bw
			bv, bw, bok = b.Next()
		}
		if weight != 0 {
			emit(v, weight)
		}
	}
}
