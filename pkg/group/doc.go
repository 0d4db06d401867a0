// Package group implements the incremental group-by operator: given a
// stream of (key, value, weight) updates stamped with partially ordered
// logical times, it maintains per key the accumulated value multiset as of
// every time and emits only the net change in a user-supplied reduction's
// output whenever new input could affect it.
//
// The operator keeps two traces: the source trace accumulates input
// differences, the result trace records what has already been emitted. When
// a time is delivered it ingests the staged input into a sorted Compact,
// asks the source trace which later-or-equal times each touched key's
// recorded input history makes interesting, and for every (key, time) pair
// due it merges the key's full
// input collection, reruns the reduction, and coalesces the candidate
// output against the negation of what was previously emitted. Downstream
// consumers therefore see exactly the multiset difference, and the
// reduction runs once per (key, time) pair that matters, never per record.
//
// Key guarantees:
//   - A key is only reprocessed at times where its recorded history could
//     have changed the output.
//   - Summed over all times, the emitted differences decompose the answer a
//     full batch recomputation would give.
//   - Keys within one time are processed in (key-hash, key) order, so runs
//     are reproducible regardless of record arrival order.
//
// Example, retaining the most frequent value per key:
//
//	op := group.NewUnsigned[lattice.Integer](kv, mapOut,
//		func(key uint64, vals *trace.CollectionIterator[uint64], out *[]trace.Pair[uint64]) {
//			best, wgt, _ := vals.Peek()
//			for {
//				v, w, ok := vals.Next()
//				if !ok {
//					break
//				}
//				if w > wgt {
//					best, wgt = v, w
//				}
//			}
//			*out = append(*out, trace.Pair[uint64]{Value: best, Weight: 1})
//		}, group.Options{})
package group
