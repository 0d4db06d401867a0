package group

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"l7mp.io/differential-dataflow/pkg/dataflow"
	"l7mp.io/differential-dataflow/pkg/lattice"
	"l7mp.io/differential-dataflow/pkg/lookup"
	"l7mp.io/differential-dataflow/pkg/radix"
	"l7mp.io/differential-dataflow/pkg/trace"
)

// Logic is the user-supplied reduction: given a key and an iterator over its
// accumulated (value, weight) pairs, already value-sorted and
// weight-coalesced, it appends (output-value, weight) pairs to out. No
// ordering contract is imposed on the appends; the operator sorts the
// buffer afterwards.
type Logic[K, V1, V2 cmp.Ordered] func(key K, input *trace.CollectionIterator[V1], out *[]trace.Pair[V2])

// Operator is one worker's instance of the incremental group-by. All of its
// state is exclusively owned; the only external coordination is the
// exchange routing that happened before records reached it.
type Operator[T lattice.Time[T], D1, D2 any, K, V1, V2 cmp.Ordered] struct {
	kv      func(D1) (K, V1)
	part    func(D1) uint64
	keyHash func(K) uint64
	mapOut  func(K, V2) D2
	logic   Logic[K, V1, V2]

	source *trace.Trace[K, V1, T]
	result *trace.Trace[K, V2, T]

	// Staged deliveries and pending key work-lists, both keyed by open
	// times. Times in flight are few, so the linear-scan lookup wins.
	inputs *lookup.Slice[T, [][]dataflow.Weighted[D1]]
	toDo   *lookup.Slice[T, []K]

	sorter   *radix.Sorter[trace.Triple[K, V1]]
	triples  []trace.Triple[K, V1]
	buffer   []trace.Pair[V2]
	scratch1 trace.Scratch[V1]
	scratch2 trace.Scratch[V2]
	timesBuf []T

	verifyRouting bool
	log           logr.Logger
	metrics       *metrics
}

// Options configures an Operator.
type Options struct {
	// Logger for the operator; defaults to a discarding logger.
	Logger logr.Logger
	// PartitionBits is the number of low key-hash bits already consumed
	// by the exchange partitioning across workers. It is forwarded to the
	// Lookup factory so dense key stores index only the bits this worker
	// owns.
	PartitionBits uint
	// VerifyRouting re-derives the partition assignment of every staged
	// record from the key hash and fails the round on disagreement.
	// Misrouted keys otherwise split silently across workers; enable this
	// in tests.
	VerifyRouting bool
	// Metrics registers the operator's counters when non-nil.
	Metrics Registerer
}

// New assembles the fully general group operator: kv extracts the (key,
// value) pair from a record, part routes raw records across workers,
// keyHash orders and buckets keys locally (part and keyHash must agree, see
// Options.VerifyRouting), mapOut turns a (key, output-value) pair into an
// output record, factory selects the key-store strategy backing the traces,
// and logic is the reduction.
func New[T lattice.Time[T], D1, D2 any, K, V1, V2 cmp.Ordered](
	kv func(D1) (K, V1),
	part func(D1) uint64,
	keyHash func(K) uint64,
	mapOut func(K, V2) D2,
	factory lookup.Factory[K, trace.Offset],
	logic Logic[K, V1, V2],
	opts Options,
) *Operator[T, D1, D2, K, V1, V2] {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Operator[T, D1, D2, K, V1, V2]{
		kv:            kv,
		part:          part,
		keyHash:       keyHash,
		mapOut:        mapOut,
		logic:         logic,
		source:        trace.New[K, V1, T](factory(opts.PartitionBits)),
		result:        trace.New[K, V2, T](factory(opts.PartitionBits)),
		inputs:        lookup.NewSlice[T, [][]dataflow.Weighted[D1]](),
		toDo:          lookup.NewSlice[T, []K](),
		sorter:        radix.NewSorter[trace.Triple[K, V1]](),
		verifyRouting: opts.VerifyRouting,
		log:           log.WithName("group"),
		metrics:       newMetrics(opts.Metrics),
	}
}

// Process is the operator body: it stages every newly arrived batch, then
// runs the two-phase ingest/recompute protocol for every time the
// notificator delivers. Suitable as a dataflow.Process.
func (op *Operator[T, D1, D2, K, V1, V2]) Process(in *dataflow.Input[T, D1], out *dataflow.Output[T, D2], n *dataflow.Notificator[T]) error {
	// Stash each delivery and request a wakeup at its time.
	for {
		time, recs, ok := in.Next()
		if !ok {
			break
		}
		if op.verifyRouting {
			if err := op.checkRouting(recs); err != nil {
				return err
			}
		}
		n.NotifyAt(time)
		q := op.inputs.EntryOrInsert(time, func() [][]dataflow.Weighted[D1] { return nil })
		*q = append(*q, recs)
		op.metrics.staged(len(recs))
	}

	// Work through each completed time. Times are interesting either
	// because data arrived or because processing an earlier time
	// concluded a later one needs revisiting.
	for {
		time, ok := n.Next()
		if !ok {
			return nil
		}
		op.processTime(time, out, n)
		op.metrics.time()
	}
}

// processTime runs both protocol phases for one delivered time.
func (op *Operator[T, D1, D2, K, V1, V2]) processTime(time T, out *dataflow.Output[T, D2], n *dataflow.Notificator[T]) {
	// Phase A: drain the staged input for this time, compact it, fan the
	// touched keys out to every time they make interesting, and install
	// the differences into the source trace.
	if deliveries, ok := op.inputs.Remove(time); ok {
		if compact := op.compactify(deliveries); compact != nil {
			for _, key := range compact.Keys() {
				op.timesBuf = op.source.InterestingTimes(key, time, op.timesBuf)
				for _, future := range op.timesBuf {
					q := op.toDo.EntryOrInsert(future, func() []K {
						// the current time's list is drained below, no
						// wakeup needed for it
						if future != time {
							n.NotifyAt(future)
						}
						return nil
					})
					*q = append(*q, key)
				}
			}
			op.source.SetDifference(time, compact)
		}
	}

	// Phase B: recompute every key due at this time and emit the net
	// difference against what was previously sent downstream.
	keys, ok := op.toDo.Remove(time)
	if !ok {
		return
	}
	slices.SortFunc(keys, func(a, b K) int {
		if c := cmp.Compare(op.keyHash(a), op.keyHash(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	keys = slices.Compact(keys)
	op.log.V(4).Info("recomputing", "time", time, "keys", len(keys))

	session := out.Session(time)
	acc := trace.NewCompact[K, V2](len(keys), 0)
	accSess := acc.Session()
	for _, key := range keys {
		input := op.source.GetCollection(key, time, &op.scratch1)
		if _, _, ok := input.Peek(); ok {
			op.logic(key, input, &op.buffer)
		}
		slices.SortFunc(op.buffer, func(a, b trace.Pair[V2]) int {
			return cmp.Compare(a.Value, b.Value)
		})

		// Retract everything previously emitted for the key and merge
		// the retraction against the fresh candidate output: what
		// survives coalescing is exactly the net difference.
		previous := trace.Negate[V2](op.result.GetCollection(key, time, &op.scratch2))
		trace.Coalesce[V2](previous, trace.NewSliceIter(op.buffer), func(value V2, weight int) {
			session.Give(op.mapOut(key, value), weight)
			accSess.Push(value, weight)
			op.metrics.delta()
		})
		accSess.Done(key)
		op.buffer = op.buffer[:0]
		op.metrics.key()
	}
	if acc.Len() > 0 {
		op.result.SetDifference(time, acc)
	}
}

// compactify turns the buffered deliveries of one time into a single
// Compact. Multiple deliveries go through the radix sorter with recycled
// scratch; a lone delivery takes the lower-overhead direct sort.
func (op *Operator[T, D1, D2, K, V1, V2]) compactify(deliveries [][]dataflow.Weighted[D1]) *trace.Compact[K, V1] {
	hash := func(t trace.Triple[K, V1]) uint64 { return op.keyHash(t.Key) }

	if len(deliveries) > 1 {
		for _, recs := range deliveries {
			op.triples = op.triples[:0]
			for _, r := range recs {
				key, val := op.kv(r.Record)
				op.triples = append(op.triples, trace.Triple[K, V1]{Key: key, Value: val, Weight: r.Weight})
			}
			op.sorter.Extend(op.triples, hash)
		}
		sorted := op.sorter.Finish(hash)
		compact := trace.FromRadix(sorted, op.keyHash)
		op.sorter.Recycle(sorted)
		return compact
	}

	recs := deliveries[0]
	triples := make([]trace.Triple[K, V1], 0, len(recs))
	for _, r := range recs {
		key, val := op.kv(r.Record)
		triples = append(triples, trace.Triple[K, V1]{Key: key, Value: val, Weight: r.Weight})
	}
	slices.SortFunc(triples, func(a, b trace.Triple[K, V1]) int {
		return cmp.Compare(op.keyHash(a.Key), op.keyHash(b.Key))
	})
	return trace.FromSorted(triples, op.keyHash)
}

// checkRouting asserts the partition/key-hash agreement contract on a
// staged batch.
func (op *Operator[T, D1, D2, K, V1, V2]) checkRouting(recs []dataflow.Weighted[D1]) error {
	for _, r := range recs {
		key, _ := op.kv(r.Record)
		if p, h := op.part(r.Record), op.keyHash(key); p != h {
			return fmt.Errorf("partition/key-hash disagreement for key %v: partition function yields %#x, key hash yields %#x", key, p, h)
		}
	}
	return nil
}
