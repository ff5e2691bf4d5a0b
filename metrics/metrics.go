// Package metrics exposes the counters spec §5 (ambient stack) asks for:
// commands sent/replied/rejected/timed-out, reassembly completions/drops,
// discovery online/offline transitions, and UDP packets dispatched per
// class code. Grounded on DMRHub's internal/metrics/prometheus.go
// (CounterVec/HistogramVec construction plus a register() method).
//
// Every recording method is nil-receiver-safe so callers can pass a nil
// *Metrics when metrics aren't wanted (e.g. in unit tests) without
// branching at every call site.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every counter/histogram/gauge this module records.
type Metrics struct {
	CommandsSent     prometheus.Counter
	CommandsAccepted prometheus.Counter
	CommandsRejected prometheus.Counter
	CommandsTimedOut prometheus.Counter
	CommandLatency   prometheus.Histogram

	ReassemblyCompleted *prometheus.CounterVec // label: kind (fft|waterfall)
	ReassemblyDropped   *prometheus.CounterVec // label: kind, reason

	DiscoveryOnline  prometheus.Counter
	DiscoveryOffline prometheus.Counter
	DiscoveryChange  prometheus.Counter

	UDPPacketsDispatched *prometheus.CounterVec // label: class_code (hex string)
	UDPPacketsMalformed  prometheus.Counter
}

// New constructs and registers every metric against the default
// registry.
func New() *Metrics {
	m := &Metrics{
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_commands_sent_total",
			Help: "Commands sent on the control channel.",
		}),
		CommandsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_commands_accepted_total",
			Help: "Commands that received a code-0 reply.",
		}),
		CommandsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_commands_rejected_total",
			Help: "Commands that received a non-zero reply code.",
		}),
		CommandsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_commands_timed_out_total",
			Help: "Commands whose per-command timeout elapsed before a reply arrived.",
		}),
		CommandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flexcore_command_latency_seconds",
			Help:    "Time from command send to reply resolution.",
			Buckets: prometheus.DefBuckets,
		}),
		ReassemblyCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexcore_reassembly_completed_total",
			Help: "Panadapter/waterfall frames fully reassembled.",
		}, []string{"kind"}),
		ReassemblyDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexcore_reassembly_dropped_total",
			Help: "Panadapter/waterfall chunks dropped before completing a frame.",
		}, []string{"kind", "reason"}),
		DiscoveryOnline: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_discovery_online_total",
			Help: "Radios observed transitioning online.",
		}),
		DiscoveryOffline: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_discovery_offline_total",
			Help: "Radios observed transitioning offline (beacon timeout).",
		}),
		DiscoveryChange: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_discovery_change_total",
			Help: "Beacons observed changing an already-known radio's descriptor.",
		}),
		UDPPacketsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flexcore_udp_packets_dispatched_total",
			Help: "Decoded VITA-49 packets dispatched to subscribers, by packet class.",
		}, []string{"class_code"}),
		UDPPacketsMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flexcore_udp_packets_malformed_total",
			Help: "Datagrams dropped for failing to decode as VITA-49.",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(
		m.CommandsSent,
		m.CommandsAccepted,
		m.CommandsRejected,
		m.CommandsTimedOut,
		m.CommandLatency,
		m.ReassemblyCompleted,
		m.ReassemblyDropped,
		m.DiscoveryOnline,
		m.DiscoveryOffline,
		m.DiscoveryChange,
		m.UDPPacketsDispatched,
		m.UDPPacketsMalformed,
	)
}

func (m *Metrics) RecordCommandSent() {
	if m == nil {
		return
	}
	m.CommandsSent.Inc()
}

func (m *Metrics) RecordCommandResolved(accepted bool, latencySeconds float64) {
	if m == nil {
		return
	}
	if accepted {
		m.CommandsAccepted.Inc()
	} else {
		m.CommandsRejected.Inc()
	}
	m.CommandLatency.Observe(latencySeconds)
}

func (m *Metrics) RecordCommandTimeout() {
	if m == nil {
		return
	}
	m.CommandsTimedOut.Inc()
}

func (m *Metrics) RecordReassemblyCompleted(kind string) {
	if m == nil {
		return
	}
	m.ReassemblyCompleted.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordReassemblyDropped(kind, reason string) {
	if m == nil {
		return
	}
	m.ReassemblyDropped.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) RecordDiscoveryOnline() {
	if m == nil {
		return
	}
	m.DiscoveryOnline.Inc()
}

func (m *Metrics) RecordDiscoveryOffline() {
	if m == nil {
		return
	}
	m.DiscoveryOffline.Inc()
}

func (m *Metrics) RecordDiscoveryChange() {
	if m == nil {
		return
	}
	m.DiscoveryChange.Inc()
}

func (m *Metrics) RecordUDPDispatched(classCode string) {
	if m == nil {
		return
	}
	m.UDPPacketsDispatched.WithLabelValues(classCode).Inc()
}

func (m *Metrics) RecordUDPMalformed() {
	if m == nil {
		return
	}
	m.UDPPacketsMalformed.Inc()
}
