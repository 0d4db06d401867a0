// Package lattice defines the logical time domain used to stamp weighted
// updates. Times are drawn from a join-semilattice: a partial order with a
// least-upper-bound operation. Totally ordered integer epochs and partially
// ordered product times are provided; nested products give deeper lattices.
package lattice

// Time is the constraint satisfied by logical timestamps. Le is the partial
// order ("less than or equal"); Join computes the least upper bound. Two
// times a, b with !a.Le(b) && !b.Le(a) are concurrent.
type Time[T comparable] interface {
	comparable
	Le(T) bool
	Join(T) T
}

// Integer is a totally ordered epoch counter.
type Integer uint64

func (t Integer) Le(o Integer) bool { return t <= o }

func (t Integer) Join(o Integer) Integer {
	if t.Le(o) {
		return o
	}
	return t
}

// Pair is the product of two time domains, ordered coordinate-wise. This is
// a genuine partial order: (0,1) and (1,0) are concurrent and join to (1,1).
type Pair[A Time[A], B Time[B]] struct {
	Outer A
	Inner B
}

// NewPair assembles a product time.
func NewPair[A Time[A], B Time[B]](outer A, inner B) Pair[A, B] {
	return Pair[A, B]{Outer: outer, Inner: inner}
}

func (t Pair[A, B]) Le(o Pair[A, B]) bool {
	return t.Outer.Le(o.Outer) && t.Inner.Le(o.Inner)
}

func (t Pair[A, B]) Join(o Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{
		Outer: t.Outer.Join(o.Outer),
		Inner: t.Inner.Join(o.Inner),
	}
}
