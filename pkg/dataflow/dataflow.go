// Package dataflow carries the minimal scheduling-substrate surface the
// group operator consumes: a pull-handle over staged (time, batch) input, a
// push-handle for emitting weighted output per time, and a notificator
// through which an operator requests to be re-invoked at a time once no
// earlier or concurrent time can still produce data for it. A
// single-threaded Worker drives one operator instance per partition; the
// distributed exchange and progress-tracking machinery live outside this
// module.
package dataflow

import (
	"l7mp.io/differential-dataflow/pkg/lattice"
)

// Weighted is a record with its signed multiplicity.
type Weighted[D any] struct {
	Record D
	Weight int
}

// Emission is one output record emitted at a logical time.
type Emission[T lattice.Time[T], D any] struct {
	Time   T
	Record D
	Weight int
}

// Input is the pull-handle over newly arrived input batches. An operator
// drains it completely on every invocation.
type Input[T lattice.Time[T], D any] struct {
	batches []inputBatch[T, D]
}

type inputBatch[T lattice.Time[T], D any] struct {
	time T
	recs []Weighted[D]
}

// Next pops the next staged (time, batch) pair.
func (in *Input[T, D]) Next() (T, []Weighted[D], bool) {
	if len(in.batches) == 0 {
		var zero T
		return zero, nil, false
	}
	b := in.batches[0]
	in.batches = in.batches[1:]
	return b.time, b.recs, true
}

func (in *Input[T, D]) push(time T, recs []Weighted[D]) {
	in.batches = append(in.batches, inputBatch[T, D]{time: time, recs: recs})
}

// Output is the push-handle for emitted differences, grouped per time
// through sessions.
type Output[T lattice.Time[T], D any] struct {
	emitted []Emission[T, D]
}

// Session opens an emission session for one time.
func (o *Output[T, D]) Session(time T) *OutputSession[T, D] {
	return &OutputSession[T, D]{out: o, time: time}
}

func (o *Output[T, D]) take() []Emission[T, D] {
	e := o.emitted
	o.emitted = nil
	return e
}

// OutputSession emits weighted records at a fixed time.
type OutputSession[T lattice.Time[T], D any] struct {
	out  *Output[T, D]
	time T
}

// Give emits one (record, weight) difference.
func (s *OutputSession[T, D]) Give(record D, weight int) {
	s.out.emitted = append(s.out.emitted, Emission[T, D]{Time: s.time, Record: record, Weight: weight})
}
