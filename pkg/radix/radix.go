// Package radix implements a bulk least-significant-byte radix sorter for
// large update batches, keyed by a caller-supplied 64-bit hash. The sorter
// retains its scratch blocks across invocations so that the per-time
// sort/compact pipeline does not churn the allocator.
package radix

const (
	blockSize  = 1024
	maxSpare   = 256
	radixWidth = 256
)

// Sorter sorts items by a uint64 key in byte-wise passes. Extend stages
// items (performing the first distribution pass), Finish runs the remaining
// passes and returns the sorted run as a sequence of blocks, and Recycle
// hands the blocks back for reuse.
type Sorter[T any] struct {
	buckets [radixWidth][][]T
	scratch [radixWidth][][]T
	spare   [][]T

	// Byte positions on which all staged keys agree are skipped in Finish.
	orKeys  uint64
	andKeys uint64
	staged  int
}

// NewSorter creates a Sorter with no scratch allocated; blocks are grown on
// first use and recycled afterwards.
func NewSorter[T any]() *Sorter[T] {
	s := &Sorter[T]{}
	s.andKeys = ^uint64(0)
	return s
}

// Extend stages a batch of items, distributing them by the low byte of their
// key. Items from successive Extend calls are sorted together by the next
// Finish.
func (s *Sorter[T]) Extend(items []T, key func(T) uint64) {
	for _, item := range items {
		k := key(item)
		s.orKeys |= k
		s.andKeys &= k
		s.append(&s.buckets[k&0xff], item)
	}
	s.staged += len(items)
}

// Finish completes the sort and returns the items in ascending key order,
// chunked into blocks. Ties on the key preserve staging order. The returned
// blocks should be handed back via Recycle once consumed.
func (s *Sorter[T]) Finish(key func(T) uint64) [][]T {
	for shift := uint(8); shift < 64; shift += 8 {
		if (s.orKeys>>shift)&0xff == (s.andKeys>>shift)&0xff {
			continue // all keys agree on this byte
		}
		s.pass(shift, key)
	}

	out := make([][]T, 0, (s.staged+blockSize-1)/blockSize)
	for b := range s.buckets {
		out = append(out, s.buckets[b]...)
		s.buckets[b] = s.buckets[b][:0]
	}
	s.staged = 0
	s.orKeys = 0
	s.andKeys = ^uint64(0)
	return out
}

// Recycle returns blocks obtained from Finish to the spare pool, keeping at
// most maxSpare of them.
func (s *Sorter[T]) Recycle(blocks [][]T) {
	for _, blk := range blocks {
		if len(s.spare) >= maxSpare {
			break
		}
		s.spare = append(s.spare, blk[:0])
	}
}

// pass redistributes every staged item by the key byte at shift, preserving
// the order established by earlier passes.
func (s *Sorter[T]) pass(shift uint, key func(T) uint64) {
	for b := range s.buckets {
		for _, blk := range s.buckets[b] {
			for _, item := range blk {
				d := (key(item) >> shift) & 0xff
				s.append(&s.scratch[d], item)
			}
			s.release(blk)
		}
		s.buckets[b] = s.buckets[b][:0]
	}
	s.buckets, s.scratch = s.scratch, s.buckets
}

func (s *Sorter[T]) append(bucket *[][]T, item T) {
	n := len(*bucket)
	if n == 0 || len((*bucket)[n-1]) == blockSize {
		*bucket = append(*bucket, s.alloc())
		n++
	}
	(*bucket)[n-1] = append((*bucket)[n-1], item)
}

func (s *Sorter[T]) alloc() []T {
	if n := len(s.spare); n > 0 {
		blk := s.spare[n-1]
		s.spare = s.spare[:n-1]
		return blk
	}
	return make([]T, 0, blockSize)
}

func (s *Sorter[T]) release(blk []T) {
	if len(s.spare) < maxSpare {
		s.spare = append(s.spare, blk[:0])
	}
}
