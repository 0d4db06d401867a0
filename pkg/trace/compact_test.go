package trace

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func identity(k uint64) uint64 { return k }

var _ = ginkgo.Describe("Compact", func() {
	ginkgo.It("groups triples into per-key value-sorted runs", func() {
		c := FromSorted([]Triple[uint64, uint64]{
			{Key: 2, Value: 30, Weight: 1},
			{Key: 2, Value: 10, Weight: 2},
			{Key: 1, Value: 20, Weight: 1},
		}, identity)
		Expect(c).NotTo(BeNil())
		Expect(c.Keys()).To(Equal([]uint64{1, 2}))
		Expect(c.Run(0)).To(Equal([]Pair[uint64]{{Value: 20, Weight: 1}}))
		Expect(c.Run(1)).To(Equal([]Pair[uint64]{{Value: 10, Weight: 2}, {Value: 30, Weight: 1}}))
	})

	ginkgo.It("coalesces duplicate (key, value) pairs and drops zero sums", func() {
		c := FromSorted([]Triple[uint64, uint64]{
			{Key: 1, Value: 5, Weight: 1},
			{Key: 1, Value: 5, Weight: 2},
			{Key: 1, Value: 7, Weight: 1},
			{Key: 1, Value: 7, Weight: -1},
		}, identity)
		Expect(c).NotTo(BeNil())
		Expect(c.Keys()).To(Equal([]uint64{1}))
		Expect(c.Run(0)).To(Equal([]Pair[uint64]{{Value: 5, Weight: 3}}))
	})

	ginkgo.It("returns nil when every difference cancels", func() {
		c := FromSorted([]Triple[uint64, uint64]{
			{Key: 1, Value: 5, Weight: 1},
			{Key: 1, Value: 5, Weight: -1},
		}, identity)
		Expect(c).To(BeNil())
	})

	ginkgo.It("returns nil for empty input", func() {
		Expect(FromSorted[uint64, uint64](nil, identity)).To(BeNil())
	})

	ginkgo.It("orders keys by hash before key", func() {
		// hash reverses the key order
		rev := func(k uint64) uint64 { return 100 - k }
		c := FromSorted([]Triple[uint64, uint64]{
			{Key: 9, Value: 1, Weight: 1},
			{Key: 3, Value: 1, Weight: 1},
		}, rev)
		Expect(c.Keys()).To(Equal([]uint64{9, 3}))
	})

	ginkgo.It("builds from radix-sorted blocks", func() {
		blocks := [][]Triple[uint64, uint64]{
			{{Key: 1, Value: 4, Weight: 1}, {Key: 1, Value: 2, Weight: 1}},
			{{Key: 2, Value: 8, Weight: 1}},
		}
		c := FromRadix(blocks, identity)
		Expect(c).NotTo(BeNil())
		Expect(c.Keys()).To(Equal([]uint64{1, 2}))
		Expect(c.Run(0)).To(Equal([]Pair[uint64]{{Value: 2, Weight: 1}, {Value: 4, Weight: 1}}))
		Expect(c.Run(1)).To(Equal([]Pair[uint64]{{Value: 8, Weight: 1}}))
	})

	ginkgo.Describe("Session", func() {
		ginkgo.It("commits pushed pairs under their key", func() {
			c := NewCompact[uint64, uint64](0, 0)
			sess := c.Session()
			sess.Push(10, 1)
			sess.Push(20, -1)
			sess.Done(5)
			sess.Push(30, 2)
			sess.Done(6)

			Expect(c.Keys()).To(Equal([]uint64{5, 6}))
			Expect(c.Len()).To(Equal(3))
			Expect(c.Run(0)).To(Equal([]Pair[uint64]{{Value: 10, Weight: 1}, {Value: 20, Weight: -1}}))
			Expect(c.Run(1)).To(Equal([]Pair[uint64]{{Value: 30, Weight: 2}}))
		})

		ginkgo.It("records nothing for a key with no pairs", func() {
			c := NewCompact[uint64, uint64](0, 0)
			sess := c.Session()
			sess.Done(5)
			Expect(c.Keys()).To(BeEmpty())
			Expect(c.Len()).To(BeZero())
		})
	})
})
