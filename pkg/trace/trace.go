package trace

import (
	"cmp"
	"slices"

	"l7mp.io/differential-dataflow/pkg/lattice"
	"l7mp.io/differential-dataflow/pkg/lookup"
)

// Offset locates one key-history entry inside a Trace's backing storage. It
// is an arena index, never a pointer, and is owned exclusively by the Trace.
type Offset uint32

const nilOffset = ^Offset(0)

// link chains a key's history entries from newest to oldest. Each entry
// names the batch it lives in and the key's position within that batch.
type link struct {
	batch uint32
	pos   uint32
	next  Offset
}

type installed[K, V cmp.Ordered, T lattice.Time[T]] struct {
	time T
	data *Compact[K, V]
}

// Trace is the append-only historical store of per-key differences. Data
// enters only through SetDifference and previously installed entries are
// never revised; the set of entries for a key is exactly the set of times at
// which that key received new differences. The key index is a caller-chosen
// Lookup, so the same Trace works with hashed, scanned, or dense key stores.
type Trace[K, V cmp.Ordered, T lattice.Time[T]] struct {
	batches []installed[K, V, T]
	links   []link
	keys    lookup.Lookup[K, Offset]
}

// New creates an empty Trace indexing keys through the supplied Lookup.
func New[K, V cmp.Ordered, T lattice.Time[T]](keys lookup.Lookup[K, Offset]) *Trace[K, V, T] {
	return &Trace[K, V, T]{keys: keys}
}

// SetDifference installs a compacted batch as the key-history entries for
// time. Nil or empty batches are ignored.
func (tr *Trace[K, V, T]) SetDifference(time T, c *Compact[K, V]) {
	if c == nil || c.Len() == 0 {
		return
	}
	batch := uint32(len(tr.batches))
	tr.batches = append(tr.batches, installed[K, V, T]{time: time, data: c})
	for i, key := range c.Keys() {
		head := tr.keys.EntryOrInsert(key, func() Offset { return nilOffset })
		tr.links = append(tr.links, link{batch: batch, pos: uint32(i), next: *head})
		*head = Offset(len(tr.links) - 1)
	}
}

// InterestingTimes reports, given that key just received new data at time,
// every time at which key's accumulated collection could now differ from
// what was previously known: the join of time with each time already on
// record for the key, plus time itself, deduplicated. Results are appended
// into buf (reset first) so callers can reuse storage across queries.
func (tr *Trace[K, V, T]) InterestingTimes(key K, time T, buf []T) []T {
	buf = append(buf[:0], time)
	head := tr.keys.GetRef(key)
	if head == nil {
		return buf
	}
	for off := *head; off != nilOffset; off = tr.links[off].next {
		lub := time.Join(tr.batches[tr.links[off].batch].time)
		if !slices.Contains(buf, lub) {
			buf = append(buf, lub)
		}
	}
	return buf
}

// Scratch holds the reusable merge state behind a collection query. The
// iterator a query returns borrows the scratch: it is invalidated by the
// next GetCollection call with the same scratch.
type Scratch[V cmp.Ordered] struct {
	it CollectionIterator[V]
}

// GetCollection merges every history entry for key at times less than or
// equal to time into one value-sorted, weight-coalesced iterator backed by
// the caller's scratch.
func (tr *Trace[K, V, T]) GetCollection(key K, time T, scratch *Scratch[V]) *CollectionIterator[V] {
	it := &scratch.it
	it.reset()
	if head := tr.keys.GetRef(key); head != nil {
		for off := *head; off != nilOffset; off = tr.links[off].next {
			ent := tr.links[off]
			b := tr.batches[ent.batch]
			if !b.time.Le(time) {
				continue
			}
			if run := b.data.Run(int(ent.pos)); len(run) > 0 {
				it.runs = append(it.runs, run)
			}
		}
	}
	return it
}

// CollectionIterator is a transient merged view over a key's per-time value
// runs: a k-way merge that sums weights of equal values across runs and
// skips values whose net weight is zero. It must not outlive the trace
// query that produced it.
type CollectionIterator[V cmp.Ordered] struct {
	runs   [][]Pair[V]
	peeked bool
	headV  V
	headW  int
}

func (it *CollectionIterator[V]) reset() {
	it.runs = it.runs[:0]
	it.peeked = false
}

// Next returns the next value and its accumulated weight, in ascending
// value order.
func (it *CollectionIterator[V]) Next() (V, int, bool) {
	if it.peeked {
		it.peeked = false
		return it.headV, it.headW, true
	}
	return it.step()
}

// Peek returns what Next would without consuming it.
func (it *CollectionIterator[V]) Peek() (V, int, bool) {
	if !it.peeked {
		v, w, ok := it.step()
		if !ok {
			return v, w, false
		}
		it.headV, it.headW, it.peeked = v, w, true
	}
	return it.headV, it.headW, true
}

func (it *CollectionIterator[V]) step() (V, int, bool) {
	for {
		var best V
		found := false
		for _, run := range it.runs {
			if len(run) > 0 && (!found || run[0].Value < best) {
				best = run[0].Value
				found = true
			}
		}
		if !found {
			var zero V
			return zero, 0, false
		}
		weight := 0
		for i, run := range it.runs {
			if len(run) > 0 && run[0].Value == best {
				weight += run[0].Weight
				it.runs[i] = run[1:]
			}
		}
		if weight != 0 {
			return best, weight, true
		}
	}
}
