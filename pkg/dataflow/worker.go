package dataflow

import (
	"fmt"

	"github.com/go-logr/logr"

	"l7mp.io/differential-dataflow/pkg/lattice"
)

// Process is an operator body: invoked once per round with whatever input
// and wakeups are ready, it runs its full ingest/recompute loop to
// completion and returns control. No blocking, no internal concurrency.
type Process[T lattice.Time[T], D1, D2 any] func(in *Input[T, D1], out *Output[T, D2], n *Notificator[T]) error

// Worker drives one operator instance for one partition, cooperatively and
// single-threaded. All operator state persists untouched between rounds;
// nothing is shared across workers. Callers own the frontier contract: a
// time sent after a Drain must not precede or be concurrent with any time
// that Drain already delivered.
type Worker[T lattice.Time[T], D1, D2 any] struct {
	log   logr.Logger
	proc  Process[T, D1, D2]
	in    Input[T, D1]
	out   Output[T, D2]
	note  Notificator[T]
	round int
}

// NewWorker creates a worker around an operator body.
func NewWorker[T lattice.Time[T], D1, D2 any](log logr.Logger, proc Process[T, D1, D2]) *Worker[T, D1, D2] {
	return &Worker[T, D1, D2]{log: log, proc: proc}
}

// Send stages a batch of weighted records at a logical time. Multiple sends
// at the same time accumulate as separate deliveries.
func (w *Worker[T, D1, D2]) Send(time T, recs []Weighted[D1]) {
	w.in.push(time, recs)
}

// Drain runs operator rounds until no staged input or pending wakeups
// remain, and returns everything emitted.
func (w *Worker[T, D1, D2]) Drain() ([]Emission[T, D2], error) {
	for len(w.in.batches) > 0 || w.note.Pending() > 0 {
		w.round++
		w.log.V(4).Info("running operator round", "round", w.round,
			"staged", len(w.in.batches), "pending", w.note.Pending())
		if err := w.proc(&w.in, &w.out, &w.note); err != nil {
			return nil, fmt.Errorf("operator round %d failed: %w", w.round, err)
		}
	}
	return w.out.take(), nil
}
