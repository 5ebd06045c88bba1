// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector backed by a Prometheus registry. Counters are
// exported through promhttp by the admin surface and flattened into a plain
// map for Stats() snapshots.

package control

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Namespace prefixes every exported metric.
const Namespace = "hioload_mux"

// Eviction reasons.
const (
	EvictReplaced   = "replaced"
	EvictPeerClosed = "peer_closed"
	EvictReadError  = "read_error"
	EvictShutdown   = "shutdown"
)

// Read outcomes.
const (
	ReadData       = "data"
	ReadEOF        = "eof"
	ReadError      = "error"
	ReadWouldBlock = "would_block"
)

// MetricsRegistry holds the loop counters and gauge.
type MetricsRegistry struct {
	reg *prometheus.Registry

	Accepted       prometheus.Counter
	AcceptErrors   prometheus.Counter
	Evictions      *prometheus.CounterVec
	Reads          *prometheus.CounterVec
	BytesReceived  prometheus.Counter
	SignalsRaised  prometheus.Counter
	SignalDrains   prometheus.Counter
	WaitInterrupts prometheus.Counter
	SlotOccupied   prometheus.Gauge
}

// NewMetricsRegistry registers the loop metrics on reg. A nil reg gets a fresh
// private registry, so several servers can live in one process.
func NewMetricsRegistry(reg *prometheus.Registry) *MetricsRegistry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &MetricsRegistry{
		reg: reg,
		Accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_accepted_total",
			Help:      "Connections accepted and installed in the slot",
		}),
		AcceptErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "accept_errors_total",
			Help:      "Failed accept attempts",
		}),
		Evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connections_evicted_total",
			Help:      "Connections removed from the slot, by reason",
		}, []string{"reason"}),
		Reads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reads_total",
			Help:      "Reads on the active connection, by outcome",
		}, []string{"outcome"}),
		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "received_bytes_total",
			Help:      "Payload bytes read from active connections",
		}),
		SignalsRaised: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "control_signals_total",
			Help:      "Control signal deliveries absorbed by the latch",
		}),
		SignalDrains: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "control_signal_drains_total",
			Help:      "Loop iterations that observed the latch set",
		}),
		WaitInterrupts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "wait_interrupts_total",
			Help:      "Readiness waits retried after signal interruption",
		}),
		SlotOccupied: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "slot_occupied",
			Help:      "1 while a connection is installed in the slot",
		}),
	}
}

// Gatherer exposes the underlying registry to exporters.
func (mr *MetricsRegistry) Gatherer() prometheus.Gatherer {
	return mr.reg
}

// GetSnapshot returns every counter and gauge of the registry, keyed as
// name{label="value"}.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	out := make(map[string]any, 16)
	families, err := mr.reg.Gather()
	if err != nil {
		out["metrics.gather_error"] = err.Error()
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName() + labelSuffix(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func labelSuffix(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, lp := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
