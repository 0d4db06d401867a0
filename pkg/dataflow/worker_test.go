package dataflow

import (
	"errors"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"l7mp.io/differential-dataflow/pkg/lattice"
)

type pairTime = lattice.Pair[lattice.Integer, lattice.Integer]

func pt(a, b uint64) pairTime {
	return lattice.NewPair(lattice.Integer(a), lattice.Integer(b))
}

var _ = Describe("Notificator", func() {
	It("delivers each requested time once", func() {
		var n Notificator[lattice.Integer]
		n.NotifyAt(1)
		n.NotifyAt(1)
		n.NotifyAt(2)

		t, ok := n.Next()
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(lattice.Integer(1)))
		t, ok = n.Next()
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(lattice.Integer(2)))
		_, ok = n.Next()
		Expect(ok).To(BeFalse())
	})

	It("never delivers a time before one that precedes it", func() {
		var n Notificator[lattice.Integer]
		n.NotifyAt(3)
		n.NotifyAt(1)
		n.NotifyAt(2)

		var got []lattice.Integer
		for {
			t, ok := n.Next()
			if !ok {
				break
			}
			got = append(got, t)
		}
		Expect(got).To(Equal([]lattice.Integer{1, 2, 3}))
	})

	It("breaks ties between concurrent times by request order", func() {
		var n Notificator[pairTime]
		n.NotifyAt(pt(1, 0))
		n.NotifyAt(pt(0, 1))
		n.NotifyAt(pt(1, 1))

		t, _ := n.Next()
		Expect(t).To(Equal(pt(1, 0)))
		t, _ = n.Next()
		Expect(t).To(Equal(pt(0, 1)))
		t, _ = n.Next()
		Expect(t).To(Equal(pt(1, 1)))
		Expect(n.Pending()).To(BeZero())
	})

	It("accepts new requests between deliveries", func() {
		var n Notificator[lattice.Integer]
		n.NotifyAt(1)
		t, _ := n.Next()
		Expect(t).To(Equal(lattice.Integer(1)))
		n.NotifyAt(5)
		t, ok := n.Next()
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(lattice.Integer(5)))
	})
})

var _ = Describe("Worker", func() {
	It("runs the operator until input and wakeups drain", func() {
		rounds := 0
		proc := func(in *Input[lattice.Integer, int], out *Output[lattice.Integer, int], n *Notificator[lattice.Integer]) error {
			rounds++
			for {
				t, recs, ok := in.Next()
				if !ok {
					break
				}
				n.NotifyAt(t)
				sess := out.Session(t)
				for _, r := range recs {
					sess.Give(r.Record*10, r.Weight)
				}
			}
			for {
				if _, ok := n.Next(); !ok {
					break
				}
			}
			return nil
		}

		w := NewWorker(logr.Discard(), proc)
		w.Send(0, []Weighted[int]{{Record: 1, Weight: 1}, {Record: 2, Weight: -1}})
		w.Send(1, []Weighted[int]{{Record: 3, Weight: 1}})

		emitted, err := w.Drain()
		Expect(err).NotTo(HaveOccurred())
		Expect(rounds).To(Equal(1))
		Expect(emitted).To(Equal([]Emission[lattice.Integer, int]{
			{Time: 0, Record: 10, Weight: 1},
			{Time: 0, Record: 20, Weight: -1},
			{Time: 1, Record: 30, Weight: 1},
		}))

		// a fresh drain returns nothing new
		emitted, err = w.Drain()
		Expect(err).NotTo(HaveOccurred())
		Expect(emitted).To(BeEmpty())
	})

	It("propagates operator failures", func() {
		boom := errors.New("boom")
		proc := func(in *Input[lattice.Integer, int], out *Output[lattice.Integer, int], n *Notificator[lattice.Integer]) error {
			return boom
		}
		w := NewWorker(logr.Discard(), proc)
		w.Send(0, []Weighted[int]{{Record: 1, Weight: 1}})
		_, err := w.Drain()
		Expect(err).To(MatchError(boom))
	})
})
