package group

import (
	"cmp"

	"github.com/cespare/xxhash/v2"

	"l7mp.io/differential-dataflow/pkg/lattice"
	"l7mp.io/differential-dataflow/pkg/lookup"
	"l7mp.io/differential-dataflow/pkg/trace"
)

// NewKeyed is the convenience entry point for string-like keys: keys are
// bucketed by xxhash, records are partitioned by the same hash, and the
// traces index keys through the general-purpose map Lookup. The time domain
// is named explicitly, everything else is inferred:
//
//	op := group.NewKeyed[lattice.Integer](kv, mapOut, logic, group.Options{})
func NewKeyed[T lattice.Time[T], D1, D2 any, K ~string, V1, V2 cmp.Ordered](
	kv func(D1) (K, V1),
	mapOut func(K, V2) D2,
	logic Logic[K, V1, V2],
	opts Options,
) *Operator[T, D1, D2, K, V1, V2] {
	keyHash := func(k K) uint64 { return xxhash.Sum64String(string(k)) }
	part := func(d D1) uint64 {
		key, _ := kv(d)
		return keyHash(key)
	}
	return New[T](kv, part, keyHash, mapOut, lookup.MapFactory[K, trace.Offset](), logic, opts)
}

// NewUnsigned is the convenience entry point for densely packed unsigned
// keys: identity hashing and partitioning, and the dense-array Lookup
// shifted by Options.PartitionBits so each worker indexes only the key bits
// it owns.
func NewUnsigned[T lattice.Time[T], D1, D2 any, K lookup.Unsigned, V1, V2 cmp.Ordered](
	kv func(D1) (K, V1),
	mapOut func(K, V2) D2,
	logic Logic[K, V1, V2],
	opts Options,
) *Operator[T, D1, D2, K, V1, V2] {
	keyHash := func(k K) uint64 { return uint64(k) }
	part := func(d D1) uint64 {
		key, _ := kv(d)
		return uint64(key)
	}
	return New[T](kv, part, keyHash, mapOut, lookup.DenseFactory[K, trace.Offset](), logic, opts)
}
