package group

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registerer is where the operator registers its counters.
type Registerer = prometheus.Registerer

// metrics carries the operator's hot-path counters. A nil *metrics is a
// no-op, so unregistered operators pay only a nil check.
type metrics struct {
	recordsStaged  prometheus.Counter
	keysRecomputed prometheus.Counter
	deltasEmitted  prometheus.Counter
	timesProcessed prometheus.Counter
}

func newMetrics(reg Registerer) *metrics {
	if reg == nil {
		return nil
	}
	m := &metrics{
		recordsStaged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dataflow",
			Subsystem: "group",
			Name:      "records_staged_total",
			Help:      "Weighted input records staged for a logical time.",
		}),
		keysRecomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dataflow",
			Subsystem: "group",
			Name:      "keys_recomputed_total",
			Help:      "(key, time) pairs for which the reduction was rerun.",
		}),
		deltasEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dataflow",
			Subsystem: "group",
			Name:      "deltas_emitted_total",
			Help:      "Net output differences emitted downstream.",
		}),
		timesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dataflow",
			Subsystem: "group",
			Name:      "times_processed_total",
			Help:      "Logical times delivered and processed.",
		}),
	}
	reg.MustRegister(m.recordsStaged, m.keysRecomputed, m.deltasEmitted, m.timesProcessed)
	return m
}

func (m *metrics) staged(n int) {
	if m != nil {
		m.recordsStaged.Add(float64(n))
	}
}

func (m *metrics) key() {
	if m != nil {
		m.keysRecomputed.Inc()
	}
}

func (m *metrics) delta() {
	if m != nil {
		m.deltasEmitted.Inc()
	}
}

func (m *metrics) time() {
	if m != nil {
		m.timesProcessed.Inc()
	}
}
