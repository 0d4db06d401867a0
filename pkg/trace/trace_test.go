package trace

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"l7mp.io/differential-dataflow/pkg/lattice"
	"l7mp.io/differential-dataflow/pkg/lookup"
)

func drain(it *CollectionIterator[uint64]) []Pair[uint64] {
	var out []Pair[uint64]
	for {
		v, w, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, Pair[uint64]{Value: v, Weight: w})
	}
}

var _ = ginkgo.Describe("Trace", func() {
	var (
		tr      *Trace[uint64, uint64, lattice.Integer]
		scratch Scratch[uint64]
	)

	ginkgo.BeforeEach(func() {
		tr = New[uint64, uint64, lattice.Integer](lookup.NewMap[uint64, Offset]())
	})

	install := func(t lattice.Integer, triples ...Triple[uint64, uint64]) {
		c := FromSorted(triples, identity)
		Expect(c).NotTo(BeNil())
		tr.SetDifference(t, c)
	}

	ginkgo.It("merges a key's history across times", func() {
		install(0, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: 1},
			Triple[uint64, uint64]{Key: 1, Value: 3, Weight: 1})
		install(1, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: 2},
			Triple[uint64, uint64]{Key: 1, Value: 9, Weight: 1})

		got := drain(tr.GetCollection(1, 1, &scratch))
		Expect(got).To(Equal([]Pair[uint64]{
			{Value: 3, Weight: 1},
			{Value: 5, Weight: 3},
			{Value: 9, Weight: 1},
		}))
	})

	ginkgo.It("excludes entries later than the query time", func() {
		install(0, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: 1})
		install(2, Triple[uint64, uint64]{Key: 1, Value: 7, Weight: 1})

		got := drain(tr.GetCollection(1, 1, &scratch))
		Expect(got).To(Equal([]Pair[uint64]{{Value: 5, Weight: 1}}))
	})

	ginkgo.It("skips values whose accumulated weight is zero", func() {
		install(0, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: 1},
			Triple[uint64, uint64]{Key: 1, Value: 3, Weight: 1})
		install(1, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: -1})

		got := drain(tr.GetCollection(1, 1, &scratch))
		Expect(got).To(Equal([]Pair[uint64]{{Value: 3, Weight: 1}}))
	})

	ginkgo.It("returns an empty iterator for unknown keys", func() {
		_, _, ok := tr.GetCollection(42, 0, &scratch).Next()
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("supports Peek without consuming", func() {
		install(0, Triple[uint64, uint64]{Key: 1, Value: 5, Weight: 1})
		it := tr.GetCollection(1, 0, &scratch)

		v, w, ok := it.Peek()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint64(5)))
		Expect(w).To(Equal(1))

		v, w, ok = it.Next()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint64(5)))
		Expect(w).To(Equal(1))

		_, _, ok = it.Next()
		Expect(ok).To(BeFalse())
	})

	ginkgo.Describe("InterestingTimes", func() {
		type T2 = lattice.Pair[lattice.Integer, lattice.Integer]
		var ptr *Trace[uint64, uint64, T2]

		ginkgo.BeforeEach(func() {
			ptr = New[uint64, uint64, T2](lookup.NewMap[uint64, Offset]())
		})

		at := func(a, b uint64) T2 {
			return lattice.NewPair(lattice.Integer(a), lattice.Integer(b))
		}

		ginkgo.It("returns just the new time for an unknown key", func() {
			Expect(ptr.InterestingTimes(1, at(0, 0), nil)).To(Equal([]T2{at(0, 0)}))
		})

		ginkgo.It("joins the new time against every recorded time", func() {
			c := FromSorted([]Triple[uint64, uint64]{{Key: 1, Value: 5, Weight: 1}}, identity)
			ptr.SetDifference(at(0, 1), c)

			// (1,0) is concurrent with the recorded (0,1): their join
			// (1,1) becomes interesting
			got := ptr.InterestingTimes(1, at(1, 0), nil)
			Expect(got).To(ConsistOf(at(1, 0), at(1, 1)))
		})

		ginkgo.It("deduplicates joins", func() {
			c1 := FromSorted([]Triple[uint64, uint64]{{Key: 1, Value: 5, Weight: 1}}, identity)
			ptr.SetDifference(at(0, 0), c1)
			c2 := FromSorted([]Triple[uint64, uint64]{{Key: 1, Value: 6, Weight: 1}}, identity)
			ptr.SetDifference(at(0, 1), c2)

			// joins with (1,0): (1,0) from (0,0), (1,1) from (0,1)
			got := ptr.InterestingTimes(1, at(1, 0), nil)
			Expect(got).To(ConsistOf(at(1, 0), at(1, 1)))
		})

		ginkgo.It("reuses the caller's buffer", func() {
			buf := make([]T2, 0, 8)
			got := ptr.InterestingTimes(1, at(0, 0), buf)
			Expect(got).To(HaveLen(1))
			got = ptr.InterestingTimes(1, at(2, 2), got)
			Expect(got).To(Equal([]T2{at(2, 2)}))
		})
	})
})
