package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts what the event loop has handled. Counters are atomic so
// Snapshot may be taken from any goroutine.
type Metrics struct {
	events      atomic.Uint64
	eventNs     atomic.Int64
	eventMaxNs  atomic.Int64
	keys        atomic.Uint64
	unbound     atomic.Uint64
	ticks       atomic.Uint64
	staleTicks  atomic.Uint64
	reloads     atomic.Uint64
	reloadFails atomic.Uint64
	spawnFails  atomic.Uint64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Events        uint64
	AvgEventTime  time.Duration
	MaxEventTime  time.Duration
	Keys          uint64
	UnboundKeys   uint64
	Ticks         uint64
	StaleTicks    uint64
	Reloads       uint64
	ReloadFailed  uint64
	SpawnFailures uint64
	Uptime        time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordEvent records the time one loop event took.
func (m *Metrics) RecordEvent(d time.Duration) {
	ns := d.Nanoseconds()
	m.events.Add(1)
	m.eventNs.Add(ns)
	for {
		old := m.eventMaxNs.Load()
		if ns <= old || m.eventMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordKey records a key press and whether a binding handled it.
func (m *Metrics) RecordKey(bound bool) {
	m.keys.Add(1)
	if !bound {
		m.unbound.Add(1)
	}
}

// RecordTick records a scheduler tick and whether it was current.
func (m *Metrics) RecordTick(current bool) {
	m.ticks.Add(1)
	if !current {
		m.staleTicks.Add(1)
	}
}

// RecordReload records a reload attempt.
func (m *Metrics) RecordReload(ok bool) {
	m.reloads.Add(1)
	if !ok {
		m.reloadFails.Add(1)
	}
}

// RecordSpawnFailure records a spawn that did not start.
func (m *Metrics) RecordSpawnFailure() {
	m.spawnFails.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Events:        m.events.Load(),
		MaxEventTime:  time.Duration(m.eventMaxNs.Load()),
		Keys:          m.keys.Load(),
		UnboundKeys:   m.unbound.Load(),
		Ticks:         m.ticks.Load(),
		StaleTicks:    m.staleTicks.Load(),
		Reloads:       m.reloads.Load(),
		ReloadFailed:  m.reloadFails.Load(),
		SpawnFailures: m.spawnFails.Load(),
		Uptime:        time.Since(m.startTime),
	}
	if s.Events > 0 {
		s.AvgEventTime = time.Duration(m.eventNs.Load() / int64(s.Events))
	}
	return s
}

// LogValues returns the snapshot as alternating keys and values.
func (s MetricsSnapshot) LogValues() []any {
	return []any{
		"events", s.Events,
		"avg_event", s.AvgEventTime.String(),
		"max_event", s.MaxEventTime.String(),
		"keys", s.Keys,
		"unbound_keys", s.UnboundKeys,
		"ticks", s.Ticks,
		"stale_ticks", s.StaleTicks,
		"reloads", s.Reloads,
		"reload_failed", s.ReloadFailed,
		"spawn_failures", s.SpawnFailures,
		"uptime", s.Uptime.Round(time.Second).String(),
	}
}
