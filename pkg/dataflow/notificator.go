package dataflow

import (
	"slices"

	"l7mp.io/differential-dataflow/pkg/lattice"
)

// Notificator tracks the set of times an operator asked to be woken at,
// either because input arrived there or because processing an earlier time
// concluded a later time needs work. Times are delivered in an order
// consistent with the partial order: Next always picks a pending time no
// other pending time precedes, breaking ties by request order.
type Notificator[T lattice.Time[T]] struct {
	pending []T
}

// NotifyAt requests a wakeup at time. Duplicate requests collapse.
func (n *Notificator[T]) NotifyAt(time T) {
	if !slices.Contains(n.pending, time) {
		n.pending = append(n.pending, time)
	}
}

// Next delivers a minimal pending time, if any.
func (n *Notificator[T]) Next() (T, bool) {
	for i, cand := range n.pending {
		minimal := true
		for j, other := range n.pending {
			if i != j && other.Le(cand) && !cand.Le(other) {
				minimal = false
				break
			}
		}
		if minimal {
			n.pending = slices.Delete(n.pending, i, i+1)
			return cand, true
		}
	}
	var zero T
	return zero, false
}

// Pending returns the number of outstanding wakeup requests.
func (n *Notificator[T]) Pending() int { return len(n.pending) }
